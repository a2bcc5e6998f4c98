package erisieve

// Stats summarizes sieve configuration and list sizes at the current
// threshold.
type Stats struct {
	NShells            int
	NFunctions         int
	Threshold          float64
	MaxPairValue       float64
	CSAM               bool
	ShellPairs         int
	ShellPairsTotal    int
	FunctionPairs      int
	FunctionPairsTotal int
}

// Stats returns a snapshot of the sieve state. The pair counts compare the
// significant lists against the full triangular pair spaces.
func (sv *Sieve) Stats() Stats {
	return Stats{
		NShells:            sv.nshell,
		NFunctions:         sv.nbf,
		Threshold:          sv.threshold,
		MaxPairValue:       sv.maxValue,
		CSAM:               sv.opts.CSAM,
		ShellPairs:         len(sv.shellPairs),
		ShellPairsTotal:    sv.nshell * (sv.nshell + 1) / 2,
		FunctionPairs:      len(sv.funcPairs),
		FunctionPairsTotal: sv.nbf * (sv.nbf + 1) / 2,
	}
}
