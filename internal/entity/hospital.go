package entity

// Coordinate is a geographic point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AdminProfile is an administrator embedded in its parent Hospital record.
// Admins have no lifecycle of their own outside the hospital that owns them.
type AdminProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Hospital is one registered hospital. The identifier is empty until the
// record is first persisted and never changes afterwards.
type Hospital struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone"`
	Address    string         `json:"address"`
	City       string         `json:"city"`
	Country    string         `json:"country"`
	PostalCode string         `json:"postalCode"`
	Type       string         `json:"type"`
	Location   Coordinate     `json:"location"`
	Admins     []AdminProfile `json:"admins,omitempty"`
}

// DecodeHospital builds a Hospital from an untyped record. It fails when a
// required field is missing or has the wrong shape; optional fields default.
func DecodeHospital(rec Record, id string) (Hospital, error) {
	var h Hospital
	var err error

	if h.Name, err = requiredString(KindHospital, rec, id, "name"); err != nil {
		return Hospital{}, err
	}
	if h.Email, err = requiredString(KindHospital, rec, id, "email"); err != nil {
		return Hospital{}, err
	}
	if h.Phone, err = requiredString(KindHospital, rec, id, "phone"); err != nil {
		return Hospital{}, err
	}
	if h.Address, err = requiredString(KindHospital, rec, id, "address"); err != nil {
		return Hospital{}, err
	}
	if h.City, err = requiredString(KindHospital, rec, id, "city"); err != nil {
		return Hospital{}, err
	}

	h.ID = id
	h.Country = optionalString(rec, "country")
	h.PostalCode = optionalString(rec, "postalCode")
	h.Type = optionalString(rec, "type")
	h.Location = Coordinate{
		Latitude:  optionalFloat(rec, "latitude"),
		Longitude: optionalFloat(rec, "longitude"),
	}

	if raw, ok := rec["admins"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return Hospital{}, decodeErr(KindHospital, id, "admins", "not a list")
		}
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return Hospital{}, decodeErr(KindHospital, id, "admins", "entry not a record")
			}
			h.Admins = append(h.Admins, AdminProfile{
				Name:  optionalString(m, "name"),
				Email: optionalString(m, "email"),
				Phone: optionalString(m, "phone"),
			})
		}
	}

	return h, nil
}

// Encode converts the hospital back to its wire record. Always succeeds.
func (h Hospital) Encode() Record {
	rec := Record{
		"name":       h.Name,
		"email":      h.Email,
		"phone":      h.Phone,
		"address":    h.Address,
		"city":       h.City,
		"country":    h.Country,
		"postalCode": h.PostalCode,
		"type":       h.Type,
		"latitude":   h.Location.Latitude,
		"longitude":  h.Location.Longitude,
	}
	if len(h.Admins) > 0 {
		admins := make([]any, 0, len(h.Admins))
		for _, a := range h.Admins {
			admins = append(admins, map[string]any{
				"name":  a.Name,
				"email": a.Email,
				"phone": a.Phone,
			})
		}
		rec["admins"] = admins
	}
	return rec
}

// HospitalCodec wires Hospital into the generic store plumbing.
var HospitalCodec = Codec[Hospital]{
	Kind:    KindHospital,
	Decode:  DecodeHospital,
	Encode:  Hospital.Encode,
	Key:     func(h Hospital) string { return h.ID },
	WithKey: func(h Hospital, id string) Hospital { h.ID = id; return h },
}
