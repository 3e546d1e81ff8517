package processor

import (
	"context"
	"io"
	"os/exec"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/fsutil"
	"github.com/matzehuels/lodestone/pkg/integrations/installer"
)

// Runner starts a command and waits for it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands as child processes, logging their output at
// debug level.
type ExecRunner struct {
	Logger *log.Logger
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.Logger != nil {
		w := r.Logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}).Writer()
		cmd.Stdout, cmd.Stderr = w, w
	}
	if err := cmd.Run(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "run %s", name)
	}
	return nil
}

// Report summarises an execution.
type Report struct {
	Ran      int `json:"ran"`
	UpToDate int `json:"up_to_date"`
}

// Executor runs plans.
type Executor struct {
	Runner Runner
	// Java is the java executable. Defaults to "java".
	Java   string
	Logger *log.Logger
}

// Execute extracts the installer entries plan needs, then runs each step
// in order. A step whose outputs already match their hashes is skipped;
// outputs that do not match after a run are INTEGRITY errors.
func (e *Executor) Execute(ctx context.Context, plan *Plan, inst *installer.Installer) (Report, error) {
	logger := e.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	java := e.Java
	if java == "" {
		java = "java"
	}

	for entry, dest := range plan.Extract {
		if err := inst.Extract(entry, dest); err != nil {
			return Report{}, err
		}
	}

	var rep Report
	for i, step := range plan.Steps {
		if upToDate(step.Outputs) {
			logger.Debug("processor up to date", "step", i, "jar", step.Jar)
			rep.UpToDate++
			continue
		}
		main, err := MainClass(step.Jar)
		if err != nil {
			return rep, err
		}

		args := append([]string{"-cp", classpath(step.Classpath), main}, step.Args...)
		logger.Info("running processor", "step", i+1, "of", len(plan.Steps), "main", main)
		if err := e.Runner.Run(ctx, java, args...); err != nil {
			return rep, err
		}
		rep.Ran++

		for path, sum := range step.Outputs {
			if !fsutil.VerifyFileSHA1(path, sum) {
				got, _ := fsutil.FileSHA1(path)
				return rep, errors.New(errors.ErrCodeIntegrity, "processor %s produced %s with sha1 %q, want %s", main, path, got, sum)
			}
		}
	}
	return rep, nil
}

// MainClass reads Main-Class from the manifest of the jar at path.
func MainClass(path string) (string, error) {
	z, err := fsutil.OpenZip(path)
	if err != nil {
		return "", err
	}
	defer z.Close()
	m, err := z.Manifest()
	if err != nil {
		return "", err
	}
	main := m["Main-Class"]
	if main == "" {
		return "", errors.MissingField(path, "Main-Class")
	}
	return main, nil
}

func upToDate(outputs map[string]string) bool {
	if len(outputs) == 0 {
		return false
	}
	for path, sum := range outputs {
		if !fsutil.VerifyFileSHA1(path, sum) {
			return false
		}
	}
	return true
}
