// Package hpc renders Slurm batch scripts that run the solver on a cluster,
// submits them, and runs the solver locally.
package hpc

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DefaultPalace is the solver executable used when a profile names none.
const DefaultPalace = "palace"

// Directives are the Slurm options of a job. Zero values are left out of the
// script.
type Directives struct {
	Partition     string   `yaml:"partition"`
	Time          string   `yaml:"time"`
	Nodes         int      `yaml:"nodes"`
	NTasksPerNode int      `yaml:"ntasks_per_node"`
	MemGB         int      `yaml:"mem"`
	JobName       string   `yaml:"job_name"`
	Output        string   `yaml:"output"`
	Custom        []string `yaml:"custom"`
}

// Lines returns one sbatch option per set directive, custom entries last.
func (d Directives) Lines() []string {
	var out []string
	add := func(flag, v string) {
		if v != "" {
			out = append(out, fmt.Sprintf("--%s=%s", flag, v))
		}
	}
	addInt := func(flag string, v int, suffix string) {
		if v > 0 {
			out = append(out, fmt.Sprintf("--%s=%d%s", flag, v, suffix))
		}
	}
	add("job-name", d.JobName)
	add("partition", d.Partition)
	add("time", d.Time)
	addInt("nodes", d.Nodes, "")
	addInt("ntasks-per-node", d.NTasksPerNode, "")
	addInt("mem", d.MemGB, "G")
	add("output", d.Output)
	for _, c := range d.Custom {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Profile describes how jobs run on one cluster.
type Profile struct {
	Palace     string     `yaml:"palace"`
	Setup      []string   `yaml:"setup"`
	Directives Directives `yaml:"directives"`
}

// LoadProfile reads a YAML profile. Unknown keys are errors.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	if p.Palace == "" {
		p.Palace = DefaultPalace
	}
	return &p, nil
}

// DefaultJobName returns a unique job name.
func DefaultJobName() string {
	return "palace-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// Job returns the job that runs config with processes MPI ranks under this
// profile. An unnamed job gets a generated name.
func (p *Profile) Job(config string, processes int) Job {
	d := p.Directives
	if d.JobName == "" {
		d.JobName = DefaultJobName()
	}
	palace := p.Palace
	if palace == "" {
		palace = DefaultPalace
	}
	return Job{
		Directives: d.Lines(),
		Setup:      p.Setup,
		Palace:     palace,
		Processes:  processes,
		Config:     config,
	}
}
