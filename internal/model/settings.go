package model

import "encoding/json"

// Settings keys as stored in the settings table, one row per key.
const (
	KeyInvoiceCounter = "invoiceCounter"
	KeyShopName       = "shopName"
	KeyTagLine        = "tagLine"
	KeyAddress        = "address"
	KeySignatory      = "signatory"
	KeyTerm1          = "term1"
	KeyTerm2          = "term2"
	KeyTerm3          = "term3"
)

// SettingKeys lists the known keys in their canonical order.
var SettingKeys = []string{
	KeyInvoiceCounter,
	KeyShopName,
	KeyTagLine,
	KeyAddress,
	KeySignatory,
	KeyTerm1,
	KeyTerm2,
	KeyTerm3,
}

// Settings is the singleton shop configuration record.
//
// InvoiceCounter is the number the next invoice will be issued with. It only
// ever grows, by exactly one per issued invoice.
//
// Extra keeps rows for keys this build does not know about, verbatim, so a
// file written by a newer build survives a load/save cycle unchanged.
type Settings struct {
	InvoiceCounter int64  `json:"invoiceCounter"`
	ShopName       string `json:"shopName"`
	TagLine        string `json:"tagLine"`
	Address        string `json:"address"`
	Signatory      string `json:"signatory"`
	Term1          string `json:"term1"`
	Term2          string `json:"term2"`
	Term3          string `json:"term3"`

	Extra map[string]json.RawMessage `json:"-"`
}

// DefaultSettings are written into every freshly created database file.
func DefaultSettings() Settings {
	return Settings{
		InvoiceCounter: 1,
		ShopName:       "SHREEJI MOTERS",
		TagLine:        "Invoice & Inventory",
		Address:        "Your Address, City, State - 123456 | Contact: +91 1234567890",
		Signatory:      "Shreeji Moters",
		Term1:          "(1) ટાયર માં કંપની મેન્યુફેક્ચરીંગ ખામીની જવાબદારી કંપની ની રહેશે.",
		Term2:          "(2) ક્લેમમાં મોકલેલ ટ્યુબ-ટાયર નો ખર્ચ તથા ઘસારો ગ્રાહકે આપવાનો રહેશે.",
		Term3:          "(3) ટ્યુબ-ટાયર ક્લેમમાં મોકલ્યા બાદ કંપનીનો નિર્ણય ગ્રાહકે માન્ય રાખવાનો રહેશે.",
	}
}

// NextInvoiceID is the id the next created invoice will receive.
func (s Settings) NextInvoiceID() string {
	return FormatInvoiceID(s.InvoiceCounter)
}

// Clone copies the Extra map.
func (s Settings) Clone() Settings {
	out := s
	if s.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// Values returns the known fields keyed by their stored key.
func (s Settings) Values() map[string]any {
	return map[string]any{
		KeyInvoiceCounter: s.InvoiceCounter,
		KeyShopName:       s.ShopName,
		KeyTagLine:        s.TagLine,
		KeyAddress:        s.Address,
		KeySignatory:      s.Signatory,
		KeyTerm1:          s.Term1,
		KeyTerm2:          s.Term2,
		KeyTerm3:          s.Term3,
	}
}

// Field returns a pointer to the string field stored under key, or nil for
// the counter and unknown keys.
func (s *Settings) Field(key string) *string {
	switch key {
	case KeyShopName:
		return &s.ShopName
	case KeyTagLine:
		return &s.TagLine
	case KeyAddress:
		return &s.Address
	case KeySignatory:
		return &s.Signatory
	case KeyTerm1:
		return &s.Term1
	case KeyTerm2:
		return &s.Term2
	case KeyTerm3:
		return &s.Term3
	}
	return nil
}
