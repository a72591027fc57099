package slurm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrEmptyJobName = fmt.Errorf("empty job name")
var ErrEmptyPartition = fmt.Errorf("empty partition")
var ErrEmptyCommand = fmt.Errorf("empty command")
var ErrNegativeTasks = fmt.Errorf("task count must be positive")
var ErrNegativeCPUs = fmt.Errorf("cpus per task must not be negative")
var ErrNegativeGPUs = fmt.Errorf("gpu count must not be negative")
var ErrInvalidTimeLimit = fmt.Errorf("invalid time limit, want D-HH:MM:SS, HH:MM:SS, MM:SS or minutes")
var ErrInvalidMemory = fmt.Errorf("invalid memory request, want <n>[K|M|G|T]")
var ErrInvalidMailType = fmt.Errorf("invalid mail type")

var jobNamePattern = regexp.MustCompile(`^[A-Za-z0-9._+=#@-]+$`)
var memoryPattern = regexp.MustCompile(`^[0-9]+[KMGT]?$`)

var validMailTypes = map[MailType]bool{
	MailTypeNone:      true,
	MailTypeBegin:     true,
	MailTypeEnd:       true,
	MailTypeFail:      true,
	MailTypeRequeue:   true,
	MailTypeAll:       true,
	MailTypeTimeLimit: true,
}

// Validate checks a spec for well-formedness before it goes to the
// scheduler. Deeper validation (partition exists, nodes available) stays
// with Slurm itself.
func Validate(spec *JobSpec) error {
	if spec.Name == "" || !jobNamePattern.MatchString(spec.Name) {
		return ErrEmptyJobName
	}
	if spec.Partition == "" {
		return ErrEmptyPartition
	}
	if spec.Command == "" {
		return ErrEmptyCommand
	}
	if spec.Tasks <= 0 {
		return ErrNegativeTasks
	}
	if spec.CPUsPerTask < 0 {
		return ErrNegativeCPUs
	}
	if spec.GPUs < 0 {
		return ErrNegativeGPUs
	}
	normalized, err := NormalizeTimeLimit(spec.TimeLimit)
	if err != nil {
		return err
	}
	spec.TimeLimit = normalized
	if spec.Memory != "" && !memoryPattern.MatchString(spec.Memory) {
		return ErrInvalidMemory
	}
	for _, mt := range spec.MailTypes {
		if !validMailTypes[mt] {
			return ErrInvalidMailType
		}
	}
	return nil
}

func parseTimePart(s string, max int) (int, bool) {
	if s == "" || len(s) > 2 {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v > max {
		return 0, false
	}
	return v, true
}

// NormalizeTimeLimit accepts the Slurm wall-clock forms (minutes, MM:SS,
// HH:MM:SS, D-HH, D-HH:MM, D-HH:MM:SS) and returns the D-HH:MM:SS form.
// Hours in the day-prefixed forms are capped at 23; the bare HH:MM:SS
// form accepts larger hour counts and rolls them into days.
func NormalizeTimeLimit(limit string) (string, error) {
	if limit == "" {
		return "", ErrInvalidTimeLimit
	}
	days := 0
	rest := limit
	if d, r, found := strings.Cut(limit, "-"); found {
		v, err := strconv.Atoi(d)
		if err != nil || v < 0 {
			return "", ErrInvalidTimeLimit
		}
		days = v
		rest = r
	}
	parts := strings.Split(rest, ":")
	var hours, minutes, seconds int
	var ok bool
	hadDays := rest != limit
	switch len(parts) {
	case 1:
		v, err := strconv.Atoi(parts[0])
		if err != nil || v < 0 {
			return "", ErrInvalidTimeLimit
		}
		if hadDays {
			// D-HH
			if v > 23 {
				return "", ErrInvalidTimeLimit
			}
			hours = v
		} else {
			// plain minutes
			days = v / (24 * 60)
			hours = v / 60 % 24
			minutes = v % 60
		}
	case 2:
		if hadDays {
			// D-HH:MM
			hours, ok = parseTimePart(parts[0], 23)
			if !ok {
				return "", ErrInvalidTimeLimit
			}
			minutes, ok = parseTimePart(parts[1], 59)
			if !ok {
				return "", ErrInvalidTimeLimit
			}
		} else {
			// MM:SS
			minutes, ok = parseTimePart(parts[0], 59)
			if !ok {
				return "", ErrInvalidTimeLimit
			}
			seconds, ok = parseTimePart(parts[1], 59)
			if !ok {
				return "", ErrInvalidTimeLimit
			}
		}
	case 3:
		if hadDays {
			hours, ok = parseTimePart(parts[0], 23)
			if !ok {
				return "", ErrInvalidTimeLimit
			}
		} else {
			// HH:MM:SS with no day part allows hours beyond 23
			// (e.g. 240:00:00); overflow rolls into days.
			v, err := strconv.Atoi(parts[0])
			if err != nil || v < 0 {
				return "", ErrInvalidTimeLimit
			}
			days = v / 24
			hours = v % 24
		}
		minutes, ok = parseTimePart(parts[1], 59)
		if !ok {
			return "", ErrInvalidTimeLimit
		}
		seconds, ok = parseTimePart(parts[2], 59)
		if !ok {
			return "", ErrInvalidTimeLimit
		}
	default:
		return "", ErrInvalidTimeLimit
	}
	return fmt.Sprintf("%d-%02d:%02d:%02d", days, hours, minutes, seconds), nil
}
