package slurm

import (
	"fmt"
	"strings"
)

// Replacer expands launch variables inside command lines, arguments and
// output paths before the script is rendered.
type Replacer struct {
	strReplacer *strings.Replacer
}

func NewReplacer(jobName string, experimentID string, user string, spoolPath string) *Replacer {
	rep := &Replacer{}
	rep.strReplacer = strings.NewReplacer(
		"${job_name}", jobName,
		"${experiment_id}", experimentID,
		"${system_user}", user,
		"${spool_path}", spoolPath,
	)
	return rep
}

func (r *Replacer) Replace(input string) string {
	return r.strReplacer.Replace(input)
}

func (r *Replacer) ReplaceSpec(spec *JobSpec) *JobSpec {
	out := *spec
	out.Command = r.Replace(spec.Command)
	out.Output = r.Replace(spec.Output)
	out.ErrorOutput = r.Replace(spec.ErrorOutput)
	out.WorkDir = r.Replace(spec.WorkDir)
	out.Args = make([]string, len(spec.Args))
	for i, a := range spec.Args {
		out.Args[i] = r.Replace(a)
	}
	return &out
}

func sbatchLine(flag string, value string) string {
	return "#SBATCH --" + flag + "=" + value
}

// quoteArg wraps an argument in double quotes when it contains characters
// the shell would otherwise interpret.
func quoteArg(arg string) string {
	if arg == "" {
		return `""`
	}
	if strings.ContainsAny(arg, " \t\"'$`\\*?[]{}()<>|&;~#/") {
		escaped := strings.ReplaceAll(arg, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		escaped = strings.ReplaceAll(escaped, "$", `\$`)
		escaped = strings.ReplaceAll(escaped, "`", "\\`")
		return `"` + escaped + `"`
	}
	return arg
}

func mailTypesValue(types []MailType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

// Render produces the sbatch script for a job spec. Directive order is
// fixed so rendering the same spec twice yields identical scripts.
func Render(spec *JobSpec) (string, error) {
	err := Validate(spec)
	if err != nil {
		return "", err
	}
	b := &strings.Builder{}
	b.WriteString("#!/bin/bash\n")
	b.WriteString(sbatchLine("job-name", spec.Name) + "\n")
	b.WriteString(sbatchLine("time", spec.TimeLimit) + "\n")
	b.WriteString(sbatchLine("ntasks", fmt.Sprintf("%d", spec.Tasks)) + "\n")
	if spec.CPUsPerTask > 0 {
		b.WriteString(sbatchLine("cpus-per-task", fmt.Sprintf("%d", spec.CPUsPerTask)) + "\n")
	}
	if spec.GPUs > 0 {
		b.WriteString(sbatchLine("gres", fmt.Sprintf("gpu:%d", spec.GPUs)) + "\n")
	}
	b.WriteString(sbatchLine("partition", spec.Partition) + "\n")
	if spec.ExcludeNodes != "" {
		b.WriteString(sbatchLine("exclude", spec.ExcludeNodes) + "\n")
	}
	if spec.Memory != "" {
		b.WriteString(sbatchLine("mem", spec.Memory) + "\n")
	}
	if spec.MailUser != "" {
		b.WriteString(sbatchLine("mail-user", spec.MailUser) + "\n")
		if len(spec.MailTypes) > 0 {
			b.WriteString(sbatchLine("mail-type", mailTypesValue(spec.MailTypes)) + "\n")
		}
	}
	if spec.Output != "" {
		b.WriteString(sbatchLine("output", spec.Output) + "\n")
	}
	if spec.ErrorOutput != "" {
		b.WriteString(sbatchLine("error", spec.ErrorOutput) + "\n")
	}
	if spec.WorkDir != "" {
		// chdir, not a cd line: the scheduler then resolves relative
		// output paths against the same directory the job runs in.
		b.WriteString(sbatchLine("chdir", spec.WorkDir) + "\n")
	}
	for _, d := range spec.Directives {
		b.WriteString("#SBATCH " + d + "\n")
	}
	b.WriteString("\n")
	if spec.CondaEnv != "" {
		b.WriteString("source ~/.bashrc\n")
		b.WriteString("conda activate " + spec.CondaEnv + "\n")
		b.WriteString("\n")
	}
	b.WriteString(spec.Command)
	for _, arg := range spec.Args {
		b.WriteString(" " + quoteArg(arg))
	}
	b.WriteString("\n")
	return b.String(), nil
}
