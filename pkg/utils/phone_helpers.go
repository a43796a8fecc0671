package utils

import (
	"regexp"
	"strings"
)

var (
	nonDigitRegexp = regexp.MustCompile(`\D`)

	// Допустимый ввод: "(858) 369-5555", "8583695555", "+18583695555".
	formattedPhoneRegexp = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)
	bareDigitsRegexp     = regexp.MustCompile(`^\d{10}$`)
	countryCodeRegexp    = regexp.MustCompile(`^\+1\d{10}$`)
)

// IsValidPhone проверяет, что номер введён в одном из трёх принятых форматов.
func IsValidPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	return formattedPhoneRegexp.MatchString(phone) ||
		bareDigitsRegexp.MatchString(phone) ||
		countryCodeRegexp.MatchString(phone)
}

// NormalizePhone убирает форматирование перед отправкой на бэкенд.
// Префикс +1 сохраняется, если он был введён.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	digits := nonDigitRegexp.ReplaceAllString(phone, "")
	if strings.HasPrefix(phone, "+1") && len(digits) == 11 {
		return "+" + digits
	}
	return digits
}

// FormatPhone превращает сохранённый номер в "(XXX) XXX-XXXX [ext. N]".
// Если номер не похож на американский, он возвращается без изменений.
func FormatPhone(stored, ext string) string {
	digits := nonDigitRegexp.ReplaceAllString(stored, "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}

	formatted := stored
	if len(digits) == 10 {
		formatted = "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	}

	ext = strings.TrimSpace(ext)
	if formatted != "" && ext != "" {
		formatted += " ext. " + ext
	}
	return formatted
}
