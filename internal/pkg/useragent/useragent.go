// Package useragent derives a coarse device label from a User-Agent
// header. The label is what access history shows a user ("iPhone",
// "Android Phone", "Windows Desktop"), so classification favors the
// common cases over exhaustive parsing.
package useragent

import "strings"

// Labels produced by Describe.
const (
	LabelUnknown        = "Unknown Device"
	LabelBot            = "Bot"
	LabelIPhone         = "iPhone"
	LabelIPad           = "iPad"
	LabelAndroidPhone   = "Android Phone"
	LabelAndroidTablet  = "Android Tablet"
	LabelWindowsPhone   = "Windows Phone"
	LabelWindowsDesktop = "Windows Desktop"
	LabelMacDesktop     = "Mac Desktop"
	LabelLinuxDesktop   = "Linux Desktop"
	LabelChromeOS       = "Chromebook"
)

// keywordSet optimizes keyword lookups using map structure.
type keywordSet map[string]struct{}

func newKeywordSet(keywords ...string) keywordSet {
	result := make(keywordSet, len(keywords))
	for _, word := range keywords {
		result[word] = struct{}{}
	}
	return result
}

func (k keywordSet) contains(s string) bool {
	for keyword := range k {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

var (
	botKeywords      = newKeywordSet("bot", "spider", "crawler", "archiver", "lighthouse", "slurp", "monitor", "validator", "fetcher", "scraper", "check", "curl", "wget", "python-requests")
	linuxKeywords    = newKeywordSet("linux", "ubuntu", "debian", "fedora", "mint", "x11")
	chromeOSKeywords = newKeywordSet("cros", "chromeos", "chrome os")
	macKeywords      = newKeywordSet("macintosh", "mac os x")
)

// Describe classifies a raw User-Agent header into a display label.
// An empty or unrecognized header yields LabelUnknown.
func Describe(rawUA string) string {
	ua := strings.ToLower(strings.TrimSpace(rawUA))
	if ua == "" {
		return LabelUnknown
	}

	// iOS devices have unambiguous identifiers, check them first.
	if strings.Contains(ua, "ipad") {
		return LabelIPad
	}
	if strings.Contains(ua, "iphone") || strings.Contains(ua, "ipod") {
		return LabelIPhone
	}

	if botKeywords.contains(ua) {
		return LabelBot
	}

	// Android tablets omit the "mobile" keyword, unlike phones.
	if strings.Contains(ua, "android") {
		if strings.Contains(ua, "mobile") {
			return LabelAndroidPhone
		}
		return LabelAndroidTablet
	}

	if strings.Contains(ua, "windows") {
		if strings.Contains(ua, "windows phone") {
			return LabelWindowsPhone
		}
		return LabelWindowsDesktop
	}

	if macKeywords.contains(ua) {
		return LabelMacDesktop
	}

	if chromeOSKeywords.contains(ua) {
		return LabelChromeOS
	}

	if linuxKeywords.contains(ua) {
		return LabelLinuxDesktop
	}

	return LabelUnknown
}
