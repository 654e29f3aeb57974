package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var rxKeepNum = regexp.MustCompile(`[^\d.\-]`)

// digit and separator forms seen in Persian/Arabic catalog exports
var faDigits = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"٫", ".", "،", ".", ",", ".",
	" ", "", " ", "", " ", "", "\t", "",
)

// ParseFloatFa parses numbers written with Persian or Arabic-Indic digits
// and separators ("۲", "۱۲٫۵", "1 234,5") into a float.
func ParseFloatFa(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = faDigits.Replace(s)
	s = rxKeepNum.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
