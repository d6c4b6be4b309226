package rules

import (
	"testing"

	"bidspatch/internal/bidsname"
)

// run applies the pipeline and fails the test on rule errors.
func run(t *testing.T, filename string) (Action, string) {
	t.Helper()
	name := bidsname.Parse(filename)
	action, err := Run(name)
	if err != nil {
		t.Fatalf("Run(%q): %v", filename, err)
	}
	return action, name.String()
}

func TestMP2RAGEGradientsDeleted(t *testing.T) {
	for _, in := range []string{
		"sub-01_inv-1_MP2RAGE.bval",
		"sub-01_inv-1_MP2RAGE.bvec",
	} {
		action, got := run(t, in)
		if action != ActionDelete {
			t.Errorf("%q: expected delete, got rename to %q", in, got)
		}
	}

	// The image itself stays.
	if action, _ := run(t, "sub-01_inv-1_MP2RAGE.nii.gz"); action != ActionKeep {
		t.Error("MP2RAGE image should be kept")
	}
}

func TestROIDeleted(t *testing.T) {
	if action, _ := run(t, "sub-01_ROI1.nii.gz"); action != ActionDelete {
		t.Error("expected ROI1 file deleted")
	}
}

func TestEchoMarkerNormalized(t *testing.T) {
	_, got := run(t, "sub-01_task-rest_e2_bold.nii.gz")
	if got != "sub-01_task-rest_echo-2_bold.nii.gz" {
		t.Fatalf("got %q", got)
	}
}

func TestRunKeptForRestingState(t *testing.T) {
	_, got := run(t, "sub-01_task-rest_run-2_echo-1_bold.nii.gz")
	if got != "sub-01_task-rest_run-2_echo-1_bold.nii.gz" {
		t.Fatalf("task-rest should keep run, got %q", got)
	}

	_, got = run(t, "sub-01_task-motor_run-2_echo-1_bold.nii.gz")
	if got != "sub-01_task-motor_echo-1_bold.nii.gz" {
		t.Fatalf("task-motor should lose run, got %q", got)
	}
}

func TestMTWLosesRun(t *testing.T) {
	_, got := run(t, "sub-01_acq-mtw_run-1_MTR.nii.gz")
	if got != "sub-01_acq-mtw_MTR.nii.gz" {
		t.Fatalf("got %q", got)
	}
}

func TestPhaseMarkerRewritten(t *testing.T) {
	_, got := run(t, "sub-01_ph_T2starw.nii.gz")
	if got != "sub-01_part-phase_T2starw.nii.gz" {
		t.Fatalf("got %q", got)
	}
}

func TestT2starwEchoGainsMagnitude(t *testing.T) {
	_, got := run(t, "sub-01_echo-2_T2starw.nii.gz")
	if got != "sub-01_echo-2_part-mag_T2starw.nii.gz" {
		t.Fatalf("got %q", got)
	}

	// An existing part entity blocks the rule.
	_, got = run(t, "sub-01_echo-2_part-phase_T2starw.nii.gz")
	if got != "sub-01_echo-2_part-phase_T2starw.nii.gz" {
		t.Fatalf("part-phase should be untouched, got %q", got)
	}
}

func TestAspireBecomesT2starmap(t *testing.T) {
	_, got := run(t, "sub-01_acq-aspire_run-1_T2starw.nii.gz")
	if got != "sub-01_acq-aspire_T2starmap.nii.gz" {
		t.Fatalf("got %q", got)
	}

	// desc or part entities mark derived files that keep their suffix.
	_, got = run(t, "sub-01_acq-aspire_desc-denoised_T2starw.nii.gz")
	if got != "sub-01_acq-aspire_desc-denoised_T2starw.nii.gz" {
		t.Fatalf("desc file should be untouched, got %q", got)
	}
}

func TestDWIRuns(t *testing.T) {
	_, got := run(t, "sub-01_run-1_dwi.nii.gz")
	if got != "sub-01_dwi.nii.gz" {
		t.Fatalf("run-1: got %q", got)
	}

	_, got = run(t, "sub-01_run-2_dwi.nii.gz")
	if got != "sub-01_part-phase_dwi.nii.gz" {
		t.Fatalf("run-2: got %q", got)
	}
}

func TestTB1TFLFold(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"sub-01_run-3_TB1TFL.nii.gz", "sub-01_acq-anat_run-2_TB1TFL.nii.gz"},
		{"sub-01_run-4_TB1TFL.nii.gz", "sub-01_acq-sfam_run-2_TB1TFL.nii.gz"},
		{"sub-01_run-1_TB1TFL.nii.gz", "sub-01_acq-anat_run-1_TB1TFL.nii.gz"},
		{"sub-01_TB1TFL.nii.gz", "sub-01_acq-sfam_run-0_TB1TFL.nii.gz"},
	}
	for _, tc := range cases {
		if _, got := run(t, tc.in); got != tc.want {
			t.Errorf("%q: got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTB1TFLNonNumericRun(t *testing.T) {
	name := bidsname.Parse("sub-01_run-x_TB1TFL.nii.gz")
	if _, err := Run(name); err == nil {
		t.Fatal("expected error for non-numeric run")
	}
}

func TestPipelineIdempotent(t *testing.T) {
	inputs := []string{
		"sub-01_task-motor_run-2_e2_bold.nii.gz",
		"sub-01_run-3_TB1TFL.nii.gz",
		"sub-01_run-4_TB1TFL.nii.gz",
		"sub-01_run-2_dwi.nii.gz",
		"sub-01_ph_e1_gre.nii.gz",
		"sub-01_acq-aspire_run-1_T2starw.nii.gz",
	}
	for _, in := range inputs {
		_, once := run(t, in)
		_, twice := run(t, once)
		if once != twice {
			t.Errorf("%q: first pass %q, second pass %q", in, once, twice)
		}
	}
}
