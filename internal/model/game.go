package model

// GameID identifies a registered game; assigned by storage on creation
type GameID int64

// Game is a title that users track their rank in
type Game struct {
	ID          GameID
	Name        string
	OwnerUserID UserID // immutable after creation
}
