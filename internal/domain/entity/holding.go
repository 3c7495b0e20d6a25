package entity

// Holding is the subset of a portfolio crypto asset needed to watch it.
type Holding struct {
	Symbol  string `json:"symbol"`
	Chain   string `json:"chain"`
	Address string `json:"address"`
}
