package scheduler

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownJob is returned for a job name with no entry or no factory
	ErrUnknownJob = errors.New("unknown job")

	// ErrJobDisabled is returned for a job the jobs file turns off
	ErrJobDisabled = errors.New("job disabled")
)

// JobSpec configures one job in the jobs file
type JobSpec struct {
	Name     string `yaml:"name"`
	Schedule string `yaml:"schedule"`
	Enabled  bool   `yaml:"enabled"`
	LiveOnly bool   `yaml:"live_only"`
}

// JobsFile is the on-disk scheduler configuration
//
//	jobs:
//	  - name: session_report
//	    schedule: "0 5 0 * * *"
//	    enabled: true
type JobsFile struct {
	Jobs []JobSpec `yaml:"jobs"`
}

var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// LoadJobsFile reads and validates a jobs file
// KnownFields(true): 오타 필드는 즉시 실패
func LoadJobsFile(path string) (*JobsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}
	return ParseJobsFile(data)
}

// ParseJobsFile decodes and validates jobs file content
func ParseJobsFile(data []byte) (*JobsFile, error) {
	var file JobsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode jobs file: %w", err)
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate checks names are unique and schedules parse
func (f *JobsFile) Validate() error {
	seen := make(map[string]bool, len(f.Jobs))
	for i, spec := range f.Jobs {
		if spec.Name == "" {
			return fmt.Errorf("jobs[%d]: name is required", i)
		}
		if seen[spec.Name] {
			return fmt.Errorf("jobs[%d]: duplicate job %q", i, spec.Name)
		}
		seen[spec.Name] = true

		if _, err := cronParser.Parse(spec.Schedule); err != nil {
			return fmt.Errorf("jobs[%d] %s: invalid schedule %q: %w", i, spec.Name, spec.Schedule, err)
		}
	}
	return nil
}

// Lookup returns the spec for a job name
func (f *JobsFile) Lookup(name string) (JobSpec, bool) {
	for _, spec := range f.Jobs {
		if spec.Name == name {
			return spec, true
		}
	}
	return JobSpec{}, false
}

// Runnable returns the spec for a job that exists and is enabled
func (f *JobsFile) Runnable(name string) (JobSpec, error) {
	spec, ok := f.Lookup(name)
	if !ok {
		return JobSpec{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if !spec.Enabled {
		return JobSpec{}, fmt.Errorf("%w: %s", ErrJobDisabled, name)
	}
	return spec, nil
}

// Enabled returns the enabled specs in file order
func (f *JobsFile) Enabled() []JobSpec {
	specs := make([]JobSpec, 0, len(f.Jobs))
	for _, spec := range f.Jobs {
		if spec.Enabled {
			specs = append(specs, spec)
		}
	}
	return specs
}

// Register builds every enabled job through its factory and adds it to the scheduler.
// A spec without a factory fails with ErrUnknownJob.
func (s *Scheduler) Register(file *JobsFile, factories map[string]func(JobSpec) Job) error {
	for _, spec := range file.Enabled() {
		build, ok := factories[spec.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownJob, spec.Name)
		}
		if err := s.AddJob(build(spec)); err != nil {
			return err
		}
	}
	s.logger.Infof("Registered %d of %d configured jobs", len(file.Enabled()), len(file.Jobs))
	return nil
}
