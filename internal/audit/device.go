package audit

import "github.com/mssola/useragent"

// DeviceName renders a User-Agent header as a short human-readable label,
// e.g. "Chrome on Mac OS X" or "Firefox on Linux (mobile)". Unknown agents
// come back as "unknown device" rather than the raw header, which can be
// arbitrarily long.
func DeviceName(rawUA string) string {
	if rawUA == "" {
		return "unknown device"
	}

	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name

	switch {
	case browser == "" && os == "":
		return "unknown device"
	case browser == "":
		return os
	case os == "":
		return browser
	}

	name := browser + " on " + os
	if ua.Mobile() {
		name += " (mobile)"
	}
	return name
}
