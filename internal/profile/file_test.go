package profile

import (
	"os"
	"path/filepath"
	"testing"
)

const bundleYAML = `job:
  title: ML Engineer
  required_skills: [Python, NLP]
  experience: 3 years of machine learning
  education: BSc Computer Science
candidates:
  - name: Jane Doe
    skills: [Python, NLP]
    experience: 5 years building NLP pipelines
    education: MSc Computer Science
  - name: John Roe
    skills: [Java]
    experience: 2 years of backend work
    education: BSc
killer:
  skills: [Python]
weights:
  skills: 0.4
  experience: 0.3
  education: 0.2
  recruiter_preferences: 0.1
`

func writeBundleFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing bundle file: %v", err)
	}
	return path
}

func TestLoadBundle(t *testing.T) {
	t.Parallel()

	bundle, err := LoadBundle(writeBundleFile(t, bundleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bundle.Job.Title != "ML Engineer" {
		t.Fatalf("unexpected job title: %q", bundle.Job.Title)
	}
	if len(bundle.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(bundle.Candidates))
	}
	if bundle.Killer == nil || len(bundle.Killer.Skills) != 1 {
		t.Fatalf("killer criteria not loaded: %+v", bundle.Killer)
	}
	if bundle.Weights[ComponentSkills] != 0.4 {
		t.Fatalf("weights not loaded: %v", bundle.Weights)
	}
}

func TestLoadBundleRejectsMissingJob(t *testing.T) {
	t.Parallel()

	content := `candidates:
  - name: Jane Doe
    skills: [Python]
    experience: some
    education: some
`
	if _, err := LoadBundle(writeBundleFile(t, content)); err == nil {
		t.Fatalf("expected error for missing job")
	}
}

func TestLoadBundleRejectsMissingCandidates(t *testing.T) {
	t.Parallel()

	content := `job:
  title: t
  required_skills: [s]
  experience: e
  education: ed
`
	if _, err := LoadBundle(writeBundleFile(t, content)); err == nil {
		t.Fatalf("expected error for missing candidates")
	}
}

func TestLoadBundleRejectsBadWeights(t *testing.T) {
	t.Parallel()

	content := `job:
  title: t
  required_skills: [s]
  experience: e
  education: ed
candidates:
  - name: Jane Doe
    skills: [Python]
    experience: some
    education: some
weights:
  charisma: 0.5
`
	if _, err := LoadBundle(writeBundleFile(t, content)); err == nil {
		t.Fatalf("expected error for unknown weight component")
	}
}

func TestLoadBundleKeepsInvalidCandidates(t *testing.T) {
	t.Parallel()

	content := `job:
  title: t
  required_skills: [s]
  experience: e
  education: ed
candidates:
  - name: Incomplete
    skills: []
    experience: ""
    education: ""
`
	bundle, err := LoadBundle(writeBundleFile(t, content))
	if err != nil {
		t.Fatalf("candidate validation must be deferred: %v", err)
	}
	if len(bundle.Candidates) != 1 {
		t.Fatalf("expected the invalid candidate to be kept")
	}
}

func TestSaveBundleRoundTrip(t *testing.T) {
	t.Parallel()

	original, err := LoadBundle(writeBundleFile(t, bundleYAML))
	if err != nil {
		t.Fatalf("loading bundle: %v", err)
	}

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := original.SaveBundle(path); err != nil {
		t.Fatalf("saving bundle: %v", err)
	}

	reloaded, err := LoadBundle(path)
	if err != nil {
		t.Fatalf("reloading bundle: %v", err)
	}
	if reloaded.Job.Title != original.Job.Title {
		t.Fatalf("job title changed: %q vs %q", reloaded.Job.Title, original.Job.Title)
	}
	if len(reloaded.Candidates) != len(original.Candidates) {
		t.Fatalf("candidate count changed")
	}
}
