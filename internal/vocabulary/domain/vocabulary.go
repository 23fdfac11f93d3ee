// Package domain defines the vocabulary content types served by the game.
package domain

// Word is a single vocabulary entry presented to the player. Term and
// Definition form the matching pair; Phonetic is optional display data.
type Word struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Phonetic   string `json:"phonetic,omitempty"`
}

// Unit is one playable set of words within a book.
type Unit struct {
	Name  string `json:"name"`
	Words []Word `json:"words"`
}

// Book groups the units of one vocabulary collection. Units carries names
// only; word content is fetched per unit through the secure exchange.
type Book struct {
	Name  string   `json:"name"`
	Units []string `json:"units"`
}
