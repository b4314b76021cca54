package models

import (
	"regexp"
	"time"

	"github.com/dixis/dixis/pkg"
)

// SecretMask replaces secret values in responses.
const SecretMask = "********"

var settingKeyPattern = regexp.MustCompile(`^[a-z0-9_.]+$`)

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Group     string    `json:"group"`
	IsSecret  bool      `json:"is_secret"`
	UpdatedBy *int64    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SettingInput struct {
	Key      string  `json:"key"`
	Value    string  `json:"value"`
	Group    *string `json:"group"`
	IsSecret *bool   `json:"is_secret"`
}

type UpdateSettingsRequest struct {
	Settings []SettingInput `json:"settings"`
}

func (r *UpdateSettingsRequest) Validate() error {
	v := pkg.ValidationErrors{}
	if len(r.Settings) == 0 {
		v.Add("settings", "is required")
	}
	for i, s := range r.Settings {
		if !settingKeyPattern.MatchString(s.Key) {
			v.Add(indexed("settings", i, "key"), "may contain only a-z, 0-9, '_' and '.'")
		}
		maxLen(v, indexed("settings", i, "key"), s.Key, 100)
		if s.Group != nil && !settingKeyPattern.MatchString(*s.Group) {
			v.Add(indexed("settings", i, "group"), "may contain only a-z, 0-9, '_' and '.'")
		}
		maxLen(v, indexed("settings", i, "value"), s.Value, 10000)
	}
	return v.Err()
}
