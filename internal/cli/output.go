package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter writing to w (stdout if nil)
func NewOutput(w io.Writer, format string) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Game:
		o.printGame(v)
	case TransactionResult:
		o.printTransactionResult(v)
	case Winner:
		o.printWinner(v)
	case Balance:
		o.printBalance(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Coin response type
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

func (c Coin) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Denom)
}

// Player response type (matches API)
type Player struct {
	Addr     string    `json:"addr"`
	Name     string    `json:"name"`
	Deposit  uint64    `json:"deposit"`
	JoinedAt time.Time `json:"joined_at"`
}

// Winner response type
type Winner struct {
	Name     string `json:"name"`
	Addr     string `json:"addr"`
	DiceRoll int    `json:"dice_roll"`
}

// Game response type
type Game struct {
	ID        string    `json:"id"`
	Phase     string    `json:"phase"`
	Players   []Player  `json:"players"`
	Pot       Coin      `json:"pot"`
	Stake     Coin      `json:"stake"`
	Winner    *Winner   `json:"winner,omitempty"`
	Rolls     []int     `json:"rolls,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payout response type
type Payout struct {
	Recipient string `json:"recipient"`
	Denom     string `json:"denom"`
	Amount    uint64 `json:"amount"`
}

// TransactionResult response type
type TransactionResult struct {
	Action  string   `json:"action"`
	Game    Game     `json:"game"`
	Payouts []Payout `json:"payouts"`
}

// Balance response type
type Balance struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
	Amount  uint64 `json:"amount"`
}

// HealthResult is the health response plus what the CLI observed
type HealthResult struct {
	Status  string `json:"status"`
	Server  string `json:"server,omitempty"`
	Latency string `json:"latency,omitempty"`
}

func (o *Output) printGame(g Game) {
	fmt.Fprintf(o.w, "Game: %s\n", g.ID)
	fmt.Fprintf(o.w, "Phase: %s\n", g.Phase)
	fmt.Fprintf(o.w, "Stake: %s\n", g.Stake)
	fmt.Fprintf(o.w, "Pot: %s\n", g.Pot)

	fmt.Fprintf(o.w, "Players (%d/2):\n", len(g.Players))
	for i, p := range g.Players {
		roll := ""
		if i < len(g.Rolls) {
			roll = fmt.Sprintf(" rolled %d", g.Rolls[i])
		}
		fmt.Fprintf(o.w, "  %d. %s (%s)%s\n", i+1, p.Name, p.Addr, roll)
	}

	if g.Winner != nil {
		fmt.Fprintf(o.w, "Winner: %s (%s) with %d\n", g.Winner.Name, g.Winner.Addr, g.Winner.DiceRoll)
	}
}

func (o *Output) printTransactionResult(r TransactionResult) {
	fmt.Fprintf(o.w, "Accepted: %s\n", r.Action)
	o.printGame(r.Game)

	if len(r.Payouts) > 0 {
		parts := make([]string, len(r.Payouts))
		for i, p := range r.Payouts {
			parts[i] = fmt.Sprintf("%d%s to %s", p.Amount, p.Denom, p.Recipient)
		}
		fmt.Fprintf(o.w, "Paid: %s\n", strings.Join(parts, ", "))
	}
}

func (o *Output) printWinner(w Winner) {
	fmt.Fprintf(o.w, "Winner: %s (%s)\n", w.Name, w.Addr)
	fmt.Fprintf(o.w, "Dice roll: %d\n", w.DiceRoll)
}

func (o *Output) printBalance(b Balance) {
	fmt.Fprintf(o.w, "%s: %d%s\n", b.Address, b.Amount, b.Denom)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if cfg != nil && cfg.Verbose {
		fmt.Fprintf(o.w, "Server: %s (%s)\n", h.Server, h.Latency)
	}
}
