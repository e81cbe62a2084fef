package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const LanguageCtx = "language"

var (
	supported = []language.Tag{language.English, language.Arabic}
	matcher   = language.NewMatcher(supported)
	messages  = newCatalog()
)

// arabic holds translations keyed by error code. English uses the error's own text.
var arabic = map[string]string{
	"user_not_found":             "المستخدم غير موجود",
	"level_not_found":            "المستوى غير موجود",
	"video_not_found":            "الفيديو غير موجود",
	"question_not_found":         "السؤال غير موجود",
	"answer_not_found":           "الإجابة غير موجودة",
	"welcome_video_not_found":    "فيديو الترحيب غير موجود",
	"image_not_found":            "الصورة غير موجودة",
	"user_exists":                "المستخدم موجود بالفعل",
	"already_enrolled":           "المستخدم مسجل بالفعل في هذا المستوى",
	"level_already_purchased":    "تم شراء هذا المستوى بالفعل",
	"level_already_assigned":     "تم تعيين هذا المستوى للمستخدم بالفعل",
	"duplicate_video_order":      "يوجد فيديو بنفس الترتيب في هذا المستوى",
	"access_denied":              "تم رفض الوصول",
	"admin_access_required":      "مطلوب صلاحية المسؤول",
	"level_not_purchased":        "لم يتم شراء هذا المستوى",
	"video_not_opened":           "يجب فتح الفيديو قبل الإجابة على أسئلته",
	"exam_not_available":         "الاختبار النهائي غير متاح حتى إكمال جميع الفيديوهات",
	"video_not_accessible":       "لا يمكن الوصول إلى هذا الفيديو",
	"not_enrolled":               "المستخدم غير مسجل في هذا المستوى",
	"invalid_input":              "مدخلات غير صالحة",
	"password_too_short":         "يجب أن تتكون كلمة المرور من 6 أحرف على الأقل",
	"invalid_file_type":          "يسمح بالصور فقط",
	"file_too_large":             "حجم الملف غير مسموح",
	"videos_in_different_levels": "الفيديوهات تنتمي إلى مستويات مختلفة",
	"invalid_credentials":        "البريد الإلكتروني أو كلمة المرور غير صحيحة",
	"token_expired":              "انتهت صلاحية الرمز",
	"invalid_token":              "رمز غير صالح",
	"conflict":                   "تعديل متزامن، أعد المحاولة",
	"storage_error":              "خطأ في التخزين",
}

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder()
	for key, msg := range arabic {
		if err := b.SetString(language.Arabic, key, msg); err != nil {
			panic(err)
		}
	}
	return b
}

// Negotiate picks the response language from the lang query value, then the
// Accept-Language header. English is the default.
func Negotiate(lang, acceptLanguage string) language.Tag {
	if lang != "" {
		if t, err := language.Parse(lang); err == nil {
			if _, idx, conf := matcher.Match(t); conf != language.No {
				return supported[idx]
			}
		}
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			if _, idx, conf := matcher.Match(tags...); conf != language.No {
				return supported[idx]
			}
		}
	}
	return language.English
}

// Message translates code into tag, returning fallback for unknown codes.
func Message(tag language.Tag, code, fallback string) string {
	if code == "" {
		return fallback
	}
	p := message.NewPrinter(tag, message.Catalog(messages))
	if msg := p.Sprintf(code); msg != code {
		return msg
	}
	return fallback
}
