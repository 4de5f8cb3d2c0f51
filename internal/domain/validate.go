package domain

import (
	"net/url"
	"strings"
	"time"
)

const (
	// MaxLogoBytes is the upload ceiling for logo images (5 MiB).
	MaxLogoBytes = 5 * 1024 * 1024

	MsgLogoTooLarge = "logo file must be 5MB or smaller"
	MsgLogoType     = "supported image formats: JPG, PNG, GIF, WebP"
)

// AllowedLogoTypes lists the accepted logo MIME types.
var AllowedLogoTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Normalize trims surrounding whitespace from every field.
func (in JobInput) Normalize() JobInput {
	return JobInput{
		Title:      strings.TrimSpace(in.Title),
		Company:    strings.TrimSpace(in.Company),
		Location:   strings.TrimSpace(in.Location),
		PostedDate: strings.TrimSpace(in.PostedDate),
		Logo:       strings.TrimSpace(in.Logo),
		Deadline:   strings.TrimSpace(in.Deadline),
		ApplyURL:   strings.TrimSpace(in.ApplyURL),
	}
}

// Validate checks required fields, dates and URLs.
// It returns *ErrValidation listing every problem found.
func (in JobInput) Validate() error {
	var details []string

	if strings.TrimSpace(in.Title) == "" {
		details = append(details, "title is required")
	}
	if strings.TrimSpace(in.Company) == "" {
		details = append(details, "company is required")
	}
	if strings.TrimSpace(in.Location) == "" {
		details = append(details, "location is required")
	}

	switch {
	case strings.TrimSpace(in.PostedDate) == "":
		details = append(details, "postedDate is required")
	case !isDate(in.PostedDate):
		details = append(details, "postedDate must be a YYYY-MM-DD date")
	}

	if in.Deadline != "" && !isDate(in.Deadline) {
		details = append(details, "deadline must be a YYYY-MM-DD date")
	}
	if in.ApplyURL != "" && !IsWebURL(in.ApplyURL) {
		details = append(details, "applyUrl is not a valid URL")
	}
	if in.Logo != "" && !IsWebURL(in.Logo) && !isLocalPath(in.Logo) {
		details = append(details, "logo is not a valid URL")
	}

	if len(details) > 0 {
		return NewErrValidation("invalid job listing", details...)
	}
	return nil
}

// isLocalPath accepts same-origin paths like /uploads/x.png. A second slash or
// backslash would make the browser treat it as another host.
func isLocalPath(s string) bool {
	return len(s) > 1 && s[0] == '/' && s[1] != '/' && s[1] != '\\'
}

// IsWebURL reports whether s is an absolute http(s) URL with a host.
func IsWebURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// ValidateLogoFile checks an image attachment against the size ceiling and allowed types.
func ValidateLogoFile(size int64, contentType string) error {
	if size > MaxLogoBytes {
		return NewErrValidation(MsgLogoTooLarge)
	}
	// Drop parameters such as "; charset=binary".
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, t := range AllowedLogoTypes {
		if contentType == t {
			return nil
		}
	}
	return NewErrValidation(MsgLogoType)
}

func isDate(s string) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(s))
	return err == nil
}
