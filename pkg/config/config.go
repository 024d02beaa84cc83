// Package config holds the small set of compilation options SrcLang's
// command line actually needs: which backend to run and where input
// and output live.
package config

// Mode selects which backend the driver runs.
type Mode int

const (
	ModeKoopa Mode = iota
	ModeRISCV
)

func (m Mode) String() string {
	if m == ModeKoopa {
		return "-koopa"
	}
	return "-riscv"
}

type Config struct {
	Mode   Mode
	Input  string
	Output string
}

func NewConfig() *Config {
	return &Config{Mode: ModeRISCV}
}
