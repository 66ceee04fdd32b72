package strategies

type Grid struct{}

type Momentum struct{}
