package progress

import "fmt"

// Game is an entry in the game corner.
type Game struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// Games lists the game corner entries. Games themselves are not playable yet.
var Games = []Game{
	{ID: "vs-bot", Name: "One Player vs Bot", Icon: "🤖", Description: "Challenge the Olive bot to a quick game."},
	{ID: "two-player", Name: "Two Player Games", Icon: "🧑‍🤝‍🧑", Description: "Play with a friend on the same screen."},
}

// Corner is the game corner as seen by a learner with a given count.
type Corner struct {
	Unlocked  bool   `json:"unlocked"`
	Completed int    `json:"lessons_completed"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
	Games     []Game `json:"games,omitempty"`
}

// CornerFor builds the game corner view for count completed lessons.
// Games are only listed once unlocked.
func CornerFor(count int) Corner {
	c := Corner{
		Unlocked:  IsUnlocked(count),
		Completed: count,
		Remaining: Remaining(count),
	}
	if c.Unlocked {
		c.Message = "Yay! Game corner is open. Pick a game!"
		c.Games = Games
		return c
	}
	noun := "lessons"
	if c.Remaining == 1 {
		noun = "lesson"
	}
	c.Message = fmt.Sprintf("Complete %d more %s to unlock games!", c.Remaining, noun)
	return c
}
