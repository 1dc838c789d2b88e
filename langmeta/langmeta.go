// Package langmeta provides the language catalog used to recognise language
// tokens in queries and to render language names in results.
//
// The catalog has two layers: an immutable base registry (every language code
// the translation backends accept, mapped to its English display name) and a
// synonym overlay (alias -> canonical code) supplied once at construction.
package langmeta

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Registry maps every supported language code to its English display name.
// Codes follow Google Translate, including its legacy iw/jw and zh-cn/zh-tw forms.
var Registry = map[string]string{
	"af":    "Afrikaans",
	"am":    "Amharic",
	"ar":    "Arabic",
	"az":    "Azerbaijani",
	"be":    "Belarusian",
	"bg":    "Bulgarian",
	"bn":    "Bengali",
	"bs":    "Bosnian",
	"ca":    "Catalan",
	"ceb":   "Cebuano",
	"co":    "Corsican",
	"cs":    "Czech",
	"cy":    "Welsh",
	"da":    "Danish",
	"de":    "German",
	"el":    "Greek",
	"en":    "English",
	"eo":    "Esperanto",
	"es":    "Spanish",
	"et":    "Estonian",
	"eu":    "Basque",
	"fa":    "Persian",
	"fi":    "Finnish",
	"fr":    "French",
	"fy":    "Frisian",
	"ga":    "Irish",
	"gd":    "Scots Gaelic",
	"gl":    "Galician",
	"gu":    "Gujarati",
	"ha":    "Hausa",
	"haw":   "Hawaiian",
	"he":    "Hebrew",
	"hi":    "Hindi",
	"hmn":   "Hmong",
	"hr":    "Croatian",
	"ht":    "Haitian Creole",
	"hu":    "Hungarian",
	"hy":    "Armenian",
	"id":    "Indonesian",
	"ig":    "Igbo",
	"is":    "Icelandic",
	"it":    "Italian",
	"iw":    "Hebrew",
	"ja":    "Japanese",
	"jw":    "Javanese",
	"ka":    "Georgian",
	"kk":    "Kazakh",
	"km":    "Khmer",
	"kn":    "Kannada",
	"ko":    "Korean",
	"ku":    "Kurdish (Kurmanji)",
	"ky":    "Kyrgyz",
	"la":    "Latin",
	"lb":    "Luxembourgish",
	"lo":    "Lao",
	"lt":    "Lithuanian",
	"lv":    "Latvian",
	"mg":    "Malagasy",
	"mi":    "Maori",
	"mk":    "Macedonian",
	"ml":    "Malayalam",
	"mn":    "Mongolian",
	"mr":    "Marathi",
	"ms":    "Malay",
	"mt":    "Maltese",
	"my":    "Myanmar (Burmese)",
	"ne":    "Nepali",
	"nl":    "Dutch",
	"no":    "Norwegian",
	"ny":    "Chichewa",
	"or":    "Odia",
	"pa":    "Punjabi",
	"pl":    "Polish",
	"ps":    "Pashto",
	"pt":    "Portuguese",
	"ro":    "Romanian",
	"ru":    "Russian",
	"sd":    "Sindhi",
	"si":    "Sinhala",
	"sk":    "Slovak",
	"sl":    "Slovenian",
	"sm":    "Samoan",
	"sn":    "Shona",
	"so":    "Somali",
	"sq":    "Albanian",
	"sr":    "Serbian",
	"st":    "Sesotho",
	"su":    "Sundanese",
	"sv":    "Swedish",
	"sw":    "Swahili",
	"ta":    "Tamil",
	"te":    "Telugu",
	"tg":    "Tajik",
	"th":    "Thai",
	"tk":    "Turkmen",
	"tl":    "Filipino",
	"tr":    "Turkish",
	"tt":    "Tatar",
	"ug":    "Uyghur",
	"uk":    "Ukrainian",
	"ur":    "Urdu",
	"uz":    "Uzbek",
	"vi":    "Vietnamese",
	"xh":    "Xhosa",
	"yi":    "Yiddish",
	"yo":    "Yoruba",
	"zh-cn": "Chinese (Simplified)",
	"zh-tw": "Chinese (Traditional)",
	"zu":    "Zulu",
}

// Logf is a printf-style logging callback.
type Logf func(format string, args ...any)

// Catalog is the base registry plus a validated synonym overlay.
// It is never modified after NewCatalog returns and is safe for concurrent reads.
type Catalog struct {
	synonyms map[string]string
}

// NewCatalog builds a catalog from a synonym table (alias -> language code).
// Entries whose target is not a Registry key are reported through warnf and
// dropped. A nil warnf discards the warnings.
func NewCatalog(synonyms map[string]string, warnf Logf) *Catalog {
	c := &Catalog{synonyms: make(map[string]string, len(synonyms))}

	aliases := make([]string, 0, len(synonyms))
	for alias := range synonyms {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	for _, alias := range aliases {
		code := synonyms[alias]
		if _, ok := Registry[code]; !ok {
			if warnf != nil {
				warnf("invalid language: %s (synonym %q)", code, alias)
			}
			continue
		}
		c.synonyms[alias] = code
	}
	return c
}

// Resolve maps a token through the synonym overlay. Tokens without a synonym
// come back unchanged; callers check Valid separately.
func (c *Catalog) Resolve(token string) string {
	if code, ok := c.synonyms[token]; ok {
		return code
	}
	return token
}

// Valid reports whether code is a key of the base registry.
func (c *Catalog) Valid(code string) bool {
	_, ok := Registry[code]
	return ok
}

// Name returns the English display name for code, or code itself if unknown.
func (c *Catalog) Name(code string) string {
	if name, ok := Registry[code]; ok {
		return name
	}
	return code
}

// Native returns the language's name in that language ("Français" for fr).
// Codes x/text cannot parse or name fall back to the English name.
func (c *Catalog) Native(code string) string {
	tag, err := language.Parse(canonicalize(code))
	if err != nil {
		return c.Name(code)
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return c.Name(code)
}

// Synonyms returns a copy of the validated synonym table.
func (c *Catalog) Synonyms() map[string]string {
	out := make(map[string]string, len(c.synonyms))
	for k, v := range c.synonyms {
		out[k] = v
	}
	return out
}

// Codes returns all registry codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(Registry))
	for code := range Registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// FromLocale maps a system locale language to its registry code where the
// two disagree (zh -> zh-cn, nb -> no, fil -> tl). Other codes pass through.
func FromLocale(lang string) string {
	switch lang {
	case "zh":
		return "zh-cn"
	case "nb", "nn":
		return "no"
	case "fil":
		return "tl"
	}
	return lang
}

// canonicalize turns registry codes into BCP 47 form: zh-cn -> zh-CN,
// and maps Google's legacy codes to their current ones.
func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	switch normalized {
	case "iw":
		return "he"
	case "jw":
		return "jv"
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}
