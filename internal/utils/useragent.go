package utils

import (
	"github.com/mssola/user_agent"
)

// DeviceInfo holds parsed user agent information
type DeviceInfo struct {
	Browser  string `json:"browser"`
	OS       string `json:"os"`
	Platform string `json:"platform"`
	IsMobile bool   `json:"is_mobile"`
	IsBot    bool   `json:"is_bot"`
}

// ParseUserAgent extracts device information from a User-Agent string
func ParseUserAgent(userAgent string) DeviceInfo {
	ua := user_agent.New(userAgent)

	browser, version := ua.Browser()
	if version != "" {
		browser = browser + " " + version
	}

	return DeviceInfo{
		Browser:  browser,
		OS:       ua.OS(),
		Platform: ua.Platform(),
		IsMobile: ua.Mobile(),
		IsBot:    ua.Bot(),
	}
}
