package coach

import (
	"math/rand/v2"

	"BankrollSentinel/internal/model"
)

// Mood classifies the message shown after the last session.
type Mood string

const (
	MoodNeutral   Mood = "neutral"
	MoodWin       Mood = "win"
	MoodLoss      Mood = "loss"
	MoodBreakEven Mood = "break_even"
)

// Message is the coach's reaction to the last session.
type Message struct {
	Mood    Mood
	Title   string
	Message string
}

var messages = map[Mood]Message{
	MoodNeutral: {
		Mood:    MoodNeutral,
		Title:   "NERVES OF STEEL",
		Message: "Consistency is boring. So is wealth. If you want thrills go skydiving. You are here to follow a plan.",
	},
	MoodWin: {
		Mood:    MoodWin,
		Title:   "EASY, CHAMP",
		Message: "You won. So what? The table is waiting for you to feel invincible so it can take it all back next session. Euphoria is poison. Lock the profit and walk away.",
	},
	MoodLoss: {
		Mood:    MoodLoss,
		Title:   "STOP THE BLEEDING",
		Message: "It hurts. Good, use it. Amateurs chase the loss right now and break the bankroll. Professionals book it as an operating cost, close the screen and come back tomorrow with a cool head.",
	},
	MoodBreakEven: {
		Mood:    MoodBreakEven,
		Title:   "A DRAW IS A WIN",
		Message: "You survived. Protecting capital is rule number one. Leaving flat beats leaving red.",
	},
}

// ForSession picks the message for the last session. A nil session yields
// the neutral message.
func ForSession(last *model.DailySession) Message {
	if last == nil {
		return messages[MoodNeutral]
	}
	switch last.Status {
	case model.StatusWin:
		return messages[MoodWin]
	case model.StatusLoss:
		return messages[MoodLoss]
	}
	return messages[MoodBreakEven]
}

// Commandments are the ten rules shown with every coaching screen.
var Commandments = []string{
	"Never chase losses. Accept the loss and you stay in control.",
	"Profit in the pocket is worth more than profit on the screen.",
	"The bankroll is your business. Do not break it.",
	"Hit the goal in five minutes? STOP. Do not push your luck.",
	"Mental fatigue is expensive. Thirty minutes is the limit.",
	"Do not play sad, drunk or euphoric.",
	"Nobody predicts the next round. Follow the strategy.",
	"Compound interest is the eighth wonder. Respect the process.",
	"Early cash-outs fill the pocket. Greed fills the ego.",
	"Wealth comes later. Discipline is needed today.",
}

// Wellbeing is appended to every coaching screen.
const Wellbeing = "If you notice signs of addiction, shaking or excessive anxiety, stop immediately. Your mental health is worth more than any bet."

// Tip is one knowledge base card.
type Tip struct {
	Category string
	Title    string
	Content  string
}

// KnowledgeBase is the pool the study feed draws from.
var KnowledgeBase = []Tip{
	{"Management", "The three stops rule", "Three stop-losses in a row at different times means you are done for the day. Protect the capital."},
	{"Mindset", "Cashing out too early", "Leaving at 1.10x out of fear needs many wins to pay for a single loss. Pick a target and trust it."},
	{"Psychology", "Dopamine detox", "The game hooks you with random rewards. Make your process dull and predictable. If you feel excited you are probably wrong."},
	{"Technique", "Smart cover bets", "Use the first bet to pay for the second: bet A cashes out low and covers the stake, bet B goes for the high multiplier."},
	{"Curiosity", "Provably fair", "Each result is fixed before the round starts. There is no click timing, only the decision to enter or not."},
	{"Beginner", "Bankroll 101", "Never stake more than 5% of the bankroll on a single round. With 100 the maximum entry is 5. Survival comes first."},
	{"Psychology", "The FOMO trap", "Saw a 100x and jumped into the next round hoping for another? Classic mistake. Fear of missing out drains beginners."},
	{"Technique", "The 1.00x crash", "Rounds that bust at take-off happen. Sit out a few rounds after one instead of revenge betting."},
	{"Math", "The 2.00x probability", "A 2.00x target wins a bit less than half of the rounds. With sound sizing it balances risk and reward for hitting goals."},
	{"Management", "Fixed session length", "Set a timer before you start. Thirty minutes of focus beats three hours of tilt."},
	{"Mindset", "Green days end early", "The goal is a ceiling, not a floor. Once it is hit the session is over."},
	{"Math", "Recovery math", "Winning back a loss of L at multiplier m needs a stake of L/(m-1). Low targets make that stake explode."},
	{"Psychology", "Log every round", "Writing down each bet slows you down and keeps the numbers honest."},
}

// FeedSize is how many tips the daily feed shows.
const FeedSize = 4

// Coach draws tips from the knowledge base.
type Coach struct {
	rng *rand.Rand
}

// New returns a Coach drawing from rng, or from a randomly seeded source
// when rng is nil.
func New(rng *rand.Rand) *Coach {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Coach{rng: rng}
}

// Tip draws one tip uniformly at random.
func (c *Coach) Tip() Tip {
	return KnowledgeBase[c.rng.IntN(len(KnowledgeBase))]
}

// Feed draws n distinct tips. n is capped at the knowledge base size.
func (c *Coach) Feed(n int) []Tip {
	n = min(max(n, 0), len(KnowledgeBase))
	out := make([]Tip, len(KnowledgeBase))
	copy(out, KnowledgeBase)
	c.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out[:n]
}
