package rules

import (
	"fmt"
	"regexp"
	"strconv"

	"bidspatch/internal/bidsname"
)

// Action is the filesystem outcome a rule decides for the current file.
type Action int

const (
	// ActionKeep leaves the file on disk; the name may still have been rewritten.
	ActionKeep Action = iota
	// ActionDelete removes the file and stops the pipeline.
	ActionDelete
)

// Rule is one step of the rename pipeline. Apply may mutate the name in place
// and returns the action for the file.
type Rule struct {
	Name  string
	Apply func(name *bidsname.Name) (Action, error)
}

// echoMarker matches a dcm2niix echo token such as "e2" at component
// boundaries, so entity values like "ses-01" cannot trigger it.
var echoMarker = regexp.MustCompile(`(?:^|_)(e([0-9]))(?:_|$)`)

// Pipeline returns the fixed rule sequence. Order matters: later rules depend
// on entities added or removed by earlier ones.
func Pipeline() []Rule {
	return []Rule{
		{Name: "drop-mp2rage-gradients", Apply: dropMP2RAGEGradients},
		{Name: "drop-roi", Apply: dropROI},
		{Name: "normalize-echo", Apply: normalizeEcho},
		{Name: "drop-run-on-echo", Apply: dropRunOnEcho},
		{Name: "drop-run-on-mtw", Apply: dropRunOnMTW},
		{Name: "phase-marker", Apply: phaseMarker},
		{Name: "t2starw-magnitude", Apply: t2starwMagnitude},
		{Name: "aspire-t2starmap", Apply: aspireT2starmap},
		{Name: "dwi-run-one", Apply: dwiRunOne},
		{Name: "dwi-run-two", Apply: dwiRunTwo},
		{Name: "tb1tfl-fold", Apply: tb1tflFold},
	}
}

// Run applies the full pipeline to the name and returns the resulting action.
func Run(name *bidsname.Name) (Action, error) {
	for _, rule := range Pipeline() {
		action, err := rule.Apply(name)
		if err != nil {
			return ActionKeep, fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		if action == ActionDelete {
			return ActionDelete, nil
		}
	}
	return ActionKeep, nil
}

// MP2RAGE acquisitions emit spurious gradient tables.
func dropMP2RAGEGradients(name *bidsname.Name) (Action, error) {
	if name.Has("MP2RAGE") && (name.Extension() == "bval" || name.Extension() == "bvec") {
		return ActionDelete, nil
	}
	return ActionKeep, nil
}

func dropROI(name *bidsname.Name) (Action, error) {
	if name.Has("ROI1") {
		return ActionDelete, nil
	}
	return ActionKeep, nil
}

// Rewrite the converter's "e<digit>" token as a proper echo entity.
func normalizeEcho(name *bidsname.Name) (Action, error) {
	if m := name.Match(echoMarker); m != nil {
		name.Remove(m[1])
		name.Add("echo", m[2])
	}
	return ActionKeep, nil
}

// Multi-echo files carry no run entity unless they belong to resting-state
// runs, where several runs per acquisition are legitimate.
func dropRunOnEcho(name *bidsname.Name) (Action, error) {
	if name.Has("echo") && name.Has("run") && !name.HasValue("task", "rest") {
		name.Remove("run")
	}
	return ActionKeep, nil
}

func dropRunOnMTW(name *bidsname.Name) (Action, error) {
	if name.HasValue("acq", "mtw") && name.Has("run") {
		name.Remove("run")
	}
	return ActionKeep, nil
}

// The converter marks phase reconstructions with a bare "ph" token.
func phaseMarker(name *bidsname.Name) (Action, error) {
	if name.Has("ph") {
		name.Remove("ph")
		name.Add("part", "phase")
	}
	return ActionKeep, nil
}

func t2starwMagnitude(name *bidsname.Name) (Action, error) {
	if name.Has("T2starw") && name.Has("echo") && !name.Has("part") {
		name.Add("part", "mag")
	}
	return ActionKeep, nil
}

// ASPIRE-combined output is a quantitative map, not a weighted image.
func aspireT2starmap(name *bidsname.Name) (Action, error) {
	if name.HasValue("acq", "aspire") && name.Has("T2starw") && !name.Has("desc") && !name.Has("part") {
		name.Remove("run")
		name.Remove("T2starw")
		name.AddToken("T2starmap")
	}
	return ActionKeep, nil
}

func dwiRunOne(name *bidsname.Name) (Action, error) {
	if name.Has("dwi") && name.HasValue("run", "1") {
		name.Remove("run")
	}
	return ActionKeep, nil
}

// The second DWI run is the phase channel of a dual acquisition.
func dwiRunTwo(name *bidsname.Name) (Action, error) {
	if name.Has("dwi") && name.HasValue("run", "2") {
		name.Remove("run")
		name.Add("part", "phase")
	}
	return ActionKeep, nil
}

// TB1TFL series interleave anatomical and SFAM images as consecutive runs:
// odd runs are anatomical, even runs SFAM, and each pair shares a run index.
// Once acq is anat or sfam the name has been folded already and the rule must
// not run again.
func tb1tflFold(name *bidsname.Name) (Action, error) {
	if !name.Has("TB1TFL") {
		return ActionKeep, nil
	}
	if name.HasValue("acq", "anat") || name.HasValue("acq", "sfam") {
		return ActionKeep, nil
	}

	runNumber := 0
	if raw := name.Get("run"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return ActionKeep, fmt.Errorf("non-numeric run %q: %w", raw, err)
		}
		runNumber = parsed
	}

	acquisition := "sfam"
	if runNumber%2 == 1 {
		acquisition = "anat"
	}
	name.Add("acq", acquisition)
	name.Add("run", strconv.Itoa((runNumber+1)/2))
	return ActionKeep, nil
}
