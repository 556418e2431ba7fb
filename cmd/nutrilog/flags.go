package nutrilog

import (
	"math"
	"strconv"

	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

// forgivingFloat is a flag value that reads malformed numbers as 0 instead
// of failing the command.
type forgivingFloat struct {
	p *float64
}

func (f forgivingFloat) String() string {
	if f.p == nil {
		return "0"
	}
	return strconv.FormatFloat(*f.p, 'f', -1, 64)
}

func (f forgivingFloat) Set(s string) error {
	*f.p = service.ParseNumber(s)
	return nil
}

func (forgivingFloat) Type() string { return "float" }

type forgivingInt struct {
	p *int
}

func (f forgivingInt) String() string {
	if f.p == nil {
		return "0"
	}
	return strconv.Itoa(*f.p)
}

func (f forgivingInt) Set(s string) error {
	*f.p = int(math.Round(service.ParseNumber(s)))
	return nil
}

func (forgivingInt) Type() string { return "int" }

func floatFlag(cmd *cobra.Command, p *float64, name string, value float64, usage string) {
	*p = value
	cmd.Flags().Var(forgivingFloat{p: p}, name, usage)
}

func intFlag(cmd *cobra.Command, p *int, name string, value int, usage string) {
	*p = value
	cmd.Flags().Var(forgivingInt{p: p}, name, usage)
}
