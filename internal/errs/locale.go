package errs

import "strings"

// message is one localized error message pair. Arabic is the product's
// primary language; English is the fallback.
type message struct {
	ar string
	en string
}

// dictionary maps internal error keys to user-facing messages. Raw
// provider error text is matched against keyFor's rules and never shown
// to users.
var dictionary = map[string]message{
	"provider_timeout": {
		ar: "انتهت مهلة الاتصال بالخادم، حاول مرة أخرى",
		en: "The request timed out, please try again",
	},
	"rate_limited": {
		ar: "عدد كبير من الطلبات، انتظر قليلاً ثم حاول مجدداً",
		en: "Too many requests, please wait and try again",
	},
	"not_found": {
		ar: "المحتوى المطلوب غير موجود",
		en: "The requested content was not found",
	},
	"video_unavailable": {
		ar: "هذا الفيديو غير متاح حالياً",
		en: "This video is currently unavailable",
	},
	"upstream_failed": {
		ar: "تعذر جلب المحتوى من المصدر، حاول لاحقاً",
		en: "Could not fetch content from the source, try again later",
	},
	"download_failed": {
		ar: "تعذر تجهيز رابط التحميل لهذا الفيديو",
		en: "Could not prepare a download link for this video",
	},
	"pin_required": {
		ar: "هذه العملية محمية برمز PIN",
		en: "This operation requires the admin PIN",
	},
	"pin_incorrect": {
		ar: "رمز PIN غير صحيح",
		en: "Incorrect PIN",
	},
	"missing_field": {
		ar: "حقل مطلوب مفقود في الطلب",
		en: "A required field is missing from the request",
	},
	"invalid_field": {
		ar: "قيمة غير صالحة في الطلب",
		en: "A request field has an invalid value",
	},
	"blocked": {
		ar: "هذا المحتوى محجوب وفق إعدادات الرقابة",
		en: "This content is blocked by the filtering policy",
	},
	"internal": {
		ar: "حدث خطأ غير متوقع",
		en: "An unexpected error occurred",
	},
}

// keyFor maps a failing provider's raw error text to a dictionary key.
// First match wins; unknown text falls through to upstream_failed.
var keyRules = []struct {
	needle string
	key    string
}{
	{"deadline exceeded", "provider_timeout"},
	{"timeout", "provider_timeout"},
	{"429", "rate_limited"},
	{"too many requests", "rate_limited"},
	{"rate limit", "rate_limited"},
	{"404", "not_found"},
	{"not found", "not_found"},
	{"unavailable", "video_unavailable"},
	{"private video", "video_unavailable"},
	{"login required", "video_unavailable"},
}

// KeyFor resolves a raw upstream error text to a dictionary key.
func KeyFor(raw string) string {
	lowered := strings.ToLower(raw)
	for _, r := range keyRules {
		if strings.Contains(lowered, r.needle) {
			return r.key
		}
	}
	return "upstream_failed"
}

// Localize returns the user-facing message for a dictionary key in the
// given language ("ar" or "en"). Unknown keys resolve to the generic
// internal-error message.
func Localize(key, lang string) string {
	m, ok := dictionary[key]
	if !ok {
		m = dictionary["internal"]
	}
	if lang == "en" {
		return m.en
	}
	return m.ar
}

// LocalizeError resolves any error to a localized message: classified
// errors use their key directly, aggregate failures are matched against
// the last raw provider text, anything else is generic.
func LocalizeError(err error, lang string) string {
	if ae, ok := AsKind(err); ok && !strings.HasPrefix(ae.Key, "provider:") {
		return Localize(ae.Key, lang)
	}
	if ag, ok := AsAggregate(err); ok {
		if ag.Last != nil {
			return Localize(KeyFor(ag.Last.Error()), lang)
		}
		return Localize("upstream_failed", lang)
	}
	return Localize("internal", lang)
}
