package orchestrator

// Control file line indices below are v1 (no hypoDD_2 header) indices into
// the standard ph2dt.inp / hypoDD.inp layouts: alternating comment lines
// and value lines, value lines holding the filename ph2dt/hypoDD expects
// on that line. renderControlFile shifts every index by one automatically
// when the template's first line is the literal hypoDD_2 marker.
const (
	ph2dtLineStation = 1 // station file
	ph2dtLinePhase   = 3 // phase file

	hypoDDLineDtCC      = 1  // cross-correlation differential time file
	hypoDDLineDtCT      = 3  // catalog differential time file
	hypoDDLineEvent     = 5  // initial hypocenter file
	hypoDDLineStation   = 7  // station file
	hypoDDLineLoc       = 9  // initial hypocenter output
	hypoDDLineReloc     = 11 // relocated hypocenter output
	hypoDDLineStaOut    = 13 // station residual output
	hypoDDLineResOut    = 15 // data residual output
	hypoDDLineSrcOut    = 17 // takeoff angle output
)

// PreparePh2dt renders ph2dt.inp in run.Dir from the configured template,
// pointing it at the already-staged station.dat/phase.dat.
func PreparePh2dt(run *Run) error {
	return renderControlFile(run.settings.Tools.Ph2dtTemplate, run.Path("ph2dt.inp"), []controlFileLine{
		{ph2dtLineStation, "station.dat"},
		{ph2dtLinePhase, "phase.dat"},
	})
}

// PrepareHypoDD renders hypoDD.inp in run.Dir from the configured
// template, pointing it at the already-staged event.dat/station.dat and
// whichever of dt.ct/dt.cc are present for this run, and naming the
// output files hypoDD emits into the working directory.
func PrepareHypoDD(run *Run, haveDtCT, haveDtCC bool) error {
	overrides := []controlFileLine{
		{hypoDDLineEvent, "event.dat"},
		{hypoDDLineStation, "station.dat"},
		{hypoDDLineLoc, "hypoDD.loc"},
		{hypoDDLineReloc, "hypoDD.reloc"},
		{hypoDDLineStaOut, "hypoDD.sta"},
		{hypoDDLineResOut, "hypoDD.res"},
		{hypoDDLineSrcOut, "hypoDD.src"},
	}
	if haveDtCT {
		overrides = append(overrides, controlFileLine{hypoDDLineDtCT, "dt.ct"})
	} else {
		overrides = append(overrides, controlFileLine{hypoDDLineDtCT, ""})
	}
	if haveDtCC {
		overrides = append(overrides, controlFileLine{hypoDDLineDtCC, "dt.cc"})
	} else {
		overrides = append(overrides, controlFileLine{hypoDDLineDtCC, ""})
	}
	return renderControlFile(run.settings.Tools.HypoDDTemplate, run.Path("hypoDD.inp"), overrides)
}
