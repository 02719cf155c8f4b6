package model

import (
	"fmt"
	"strings"
	"time"
)

const DOBLayout = "2006-01-02"

type CoreProfile struct {
	Name     string `json:"name" yaml:"name"`
	DOB      string `json:"dob,omitempty" yaml:"dob,omitempty"`
	District string `json:"district,omitempty" yaml:"district,omitempty"`
}

type Lifestyle struct {
	Conditions []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Occupation string   `json:"occupation,omitempty" yaml:"occupation,omitempty"`
}

// Profile is what a user submits about themselves once and is reused by every prediction.
type Profile struct {
	Core      CoreProfile `json:"core" yaml:"core"`
	Lifestyle Lifestyle   `json:"lifestyle" yaml:"lifestyle"`
}

// Key returns the storage key for a profile name.
func Key(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// Key returns the storage key of the profile.
func (p Profile) Key() string {
	return Key(p.Core.Name)
}

// BirthDate parses DOB. ok is false when no DOB was given.
func (p Profile) BirthDate() (t time.Time, ok bool, err error) {
	if p.Core.DOB == "" {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(DOBLayout, p.Core.DOB)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("dob %q must be YYYY-MM-DD", p.Core.DOB)
	}
	return t, true, nil
}

// HasCondition reports whether the lifestyle lists condition, ignoring case.
func (p Profile) HasCondition(condition string) bool {
	for _, c := range p.Lifestyle.Conditions {
		if strings.EqualFold(strings.TrimSpace(c), condition) {
			return true
		}
	}
	return false
}

// Validate checks a profile for storage as of now. Stored profiles need a name.
func (p Profile) Validate(now time.Time) error {
	if strings.TrimSpace(p.Core.Name) == "" {
		return fmt.Errorf("core.name is required")
	}
	return p.ValidateDOB(now)
}

// ValidateDOB checks only the birth date, which is all scoring needs.
func (p Profile) ValidateDOB(now time.Time) error {
	dob, ok, err := p.BirthDate()
	if err != nil {
		return err
	}
	if ok && dob.After(now) {
		return fmt.Errorf("dob %s is in the future", p.Core.DOB)
	}
	return nil
}
