package catalog

import (
	"fmt"
	"strings"
	"time"
)

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	switch status := ApprovalStatus(strings.ToLower(strings.TrimSpace(value))); status {
	case StatusPending, StatusApproved, StatusRejected:
		return status, nil
	}

	return "", fmt.Errorf("unknown approval status %q", value)
}

type Level string

const (
	LevelPreSchool  Level = "pré-scolaire"
	LevelPrimary    Level = "primaire"
	LevelSecondary  Level = "secondaire"
	LevelHighSchool Level = "lycée"
	LevelHigher     Level = "supérieur"
	LevelVocational Level = "formation professionnelle"
)

// Levels is ordered from the youngest pupils upwards.
var Levels = []Level{
	LevelPreSchool,
	LevelPrimary,
	LevelSecondary,
	LevelHighSchool,
	LevelHigher,
	LevelVocational,
}

// ParseLevel accepts the stored spelling, with or without accents and in any case.
func ParseLevel(value string) (Level, error) {
	key := Fold(value)
	for _, level := range Levels {
		if Fold(string(level)) == key {
			return level, nil
		}
	}

	return "", fmt.Errorf("unknown level %q", value)
}

type OwnershipType string

const (
	OwnershipPublic  OwnershipType = "public"
	OwnershipPrivate OwnershipType = "private"
)

var ownershipSynonyms = map[string]OwnershipType{
	"public":   OwnershipPublic,
	"publique": OwnershipPublic,
	"private":  OwnershipPrivate,
	"prive":    OwnershipPrivate,
	"privee":   OwnershipPrivate,
}

// ParseOwnershipType collapses the accepted spellings ("privé", "privée",
// "private", "publique", ...) to the canonical value.
func ParseOwnershipType(value string) (OwnershipType, error) {
	if ownership, ok := ownershipSynonyms[Fold(value)]; ok {
		return ownership, nil
	}

	return "", fmt.Errorf("unknown ownership type %q", value)
}

type Location struct {
	ID        uint64  `json:"id"`
	City      string  `json:"city"`
	District  string  `json:"district"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Label is how a location is shown in pickers, e.g. "Nouakchott, Ksar".
func (l Location) Label() string {
	if l.District == "" {
		return l.City
	}

	return l.City + ", " + l.District
}

func (l Location) Validate() error {
	if strings.TrimSpace(l.City) == "" {
		return &ValidationError{Field: "city", Reason: "city is required"}
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		return &ValidationError{Field: "latitude", Reason: "latitude must be within [-90, 90]"}
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return &ValidationError{Field: "longitude", Reason: "longitude must be within [-180, 180]"}
	}

	return nil
}

type Offering struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// Establishment is the search-facing view of a listing: the location and
// offering names are already resolved. Binary attachments are never carried here.
type Establishment struct {
	ID            uint64         `json:"id"`
	Name          string         `json:"name"`
	Phone         string         `json:"phone"`
	CreatedOn     time.Time      `json:"created_on"`
	Level         Level          `json:"level"`
	OwnershipType OwnershipType  `json:"ownership_type"`
	Description   string         `json:"description"`
	Website       string         `json:"website,omitempty"`
	Status        ApprovalStatus `json:"status"`
	Location      *Location      `json:"location,omitempty"`
	Offerings     []string       `json:"offerings"`
	PhotoURLs     []string       `json:"photo_urls"`
	DocumentID    string         `json:"document_id,omitempty"`
}

// NewEstablishment is what a registration writes; the store assigns the id and
// the pending status.
type NewEstablishment struct {
	Name          string
	Phone         string
	Level         Level
	OwnershipType OwnershipType
	Description   string
	Website       string
	LocationID    uint64
	Offerings     []string
	PhotoURLs     []string
	Owner         Owner
	Document      *Document
}

type Owner struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

type Review struct {
	ID              uint64    `json:"id"`
	EstablishmentID uint64    `json:"establishment_id"`
	Author          string    `json:"author"`
	Rating          float64   `json:"rating"`
	Comment         string    `json:"comment"`
	CreatedAt       time.Time `json:"created_at"`
}

// Document is an uploaded blob (authorization scan, photo) and its declared content type.
type Document struct {
	ID          string `json:"id"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}
