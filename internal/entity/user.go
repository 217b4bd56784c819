package entity

// User is the persistent reward bookkeeping for one player, independent of
// any single session.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Trophies int    `json:"trophies"`
	Coins    int    `json:"coins"`
	Stars    int    `json:"stars"`
}
