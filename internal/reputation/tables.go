package reputation

// suspiciousTLDs are suffixes heavily used for throwaway phishing domains.
var suspiciousTLDs = map[string]struct{}{
	"zip": {}, "mov": {}, "xyz": {}, "top": {}, "click": {}, "link": {}, "tk": {}, "ml": {}, "ga": {}, "cf": {}, "gq": {},
	"work": {}, "club": {}, "buzz": {}, "icu": {}, "rest": {}, "fit": {}, "loan": {}, "country": {}, "kim": {},
	"men": {}, "party": {}, "review": {}, "stream": {}, "download": {}, "racing": {}, "win": {}, "bid": {},
	"cam": {}, "monster": {}, "cyou": {}, "sbs": {}, "cfd": {}, "quest": {}, "support": {}, "live": {},
}

// defaultBrands maps a brand token to the domains it legitimately uses.
var defaultBrands = map[string][]string{
	"paypal":        {"paypal.com", "paypal.me", "paypalobjects.com", "paypal-community.com"},
	"amazon":        {"amazon.com", "amazon.co.uk", "amazon.de", "amazon.co.jp", "amazon.fr", "amazon.ca", "amazon.in", "amazonaws.com", "media-amazon.com"},
	"apple":         {"apple.com", "icloud.com", "apple.news", "apps.apple.com"},
	"icloud":        {"icloud.com", "apple.com"},
	"google":        {"google.com", "google.co.uk", "googleapis.com", "googleusercontent.com", "gstatic.com", "google.de", "google.co.jp"},
	"microsoft":     {"microsoft.com", "live.com", "office.com", "microsoftonline.com", "azure.com"},
	"outlook":       {"outlook.com", "live.com", "office.com", "microsoft.com"},
	"facebook":      {"facebook.com", "fb.com", "fbcdn.net", "facebook.net"},
	"instagram":     {"instagram.com", "cdninstagram.com"},
	"whatsapp":      {"whatsapp.com", "whatsapp.net", "wa.me"},
	"netflix":       {"netflix.com", "nflxext.com", "nflximg.net"},
	"chase":         {"chase.com", "jpmorganchase.com"},
	"wellsfargo":    {"wellsfargo.com"},
	"bankofamerica": {"bankofamerica.com", "bofa.com"},
	"linkedin":      {"linkedin.com", "licdn.com"},
	"dropbox":       {"dropbox.com", "dropboxusercontent.com"},
	"coinbase":      {"coinbase.com"},
	"binance":       {"binance.com", "binance.us"},
	"docusign":      {"docusign.com", "docusign.net"},
	"steam":         {"steampowered.com", "steamcommunity.com", "steamstatic.com"},
	"usps":          {"usps.com"},
	"fedex":         {"fedex.com"},
	"dhl":           {"dhl.com", "dhl.de"},
	"irs":           {"irs.gov"},
}
