package seed

import (
	"context"
	"fmt"

	"github.com/meghashyamc/schoolfinder/db/catalog"
)

type Record struct {
	Name          string
	Level         catalog.Level
	OwnershipType catalog.OwnershipType
	Description   string
	Phone         string
	Website       string
	PhotoURLs     []string
	City          string
	District      string
	Latitude      float64
	Longitude     float64
	Offerings     []string
}

var Records = []Record{
	{
		Name:          "Université de Nouakchott Al-Aasriya",
		Level:         catalog.LevelHigher,
		OwnershipType: catalog.OwnershipPublic,
		Description:   "Université publique fondée en 1981 (fusionnée en 2016). Plus de 12 000 étudiants sur plusieurs campus.",
		Phone:         "+222 45 29 17 18",
		Website:       "https://www.una.mr",
		PhotoURLs:     []string{"/images/image1.jpg", "/images/image2.jpg", "/images/image3.jpg"},
		City:          "Nouakchott",
		District:      "Tevragh-Zeina",
		Latitude:      18.0941,
		Longitude:     -15.9719,
		Offerings:     []string{"Médecine", "Droit", "Sciences & Tech."},
	},
	{
		Name:          "Université des Sciences & Tech. de Nouadhibou",
		Level:         catalog.LevelHigher,
		OwnershipType: catalog.OwnershipPublic,
		Description:   "Établissement public spécialisé dans l’ingénierie minière, les pêches et la logistique portuaire.",
		Phone:         "+222 46 74 01 92",
		Website:       "https://ustn.mr",
		PhotoURLs:     []string{"/images/placeholder.jpg"},
		City:          "Nouadhibou",
		District:      "Centre-Ville",
		Latitude:      20.9334,
		Longitude:     -17.0465,
		Offerings:     []string{"Génie minier", "Logistique portuaire"},
	},
	{
		Name:          "Institut Sup. d’Enseignement Technique de Rosso",
		Level:         catalog.LevelHigher,
		OwnershipType: catalog.OwnershipPublic,
		Description:   "Ancien Lycée de Rosso, devenu ISET Rosso ; formation agro-pastorale et technologique (≈800 étudiants).",
		Phone:         "+222 45 57 60 31",
		Website:       "https://iset-rosso.mr",
		PhotoURLs:     []string{"/images/image4.jpg", "/images/image5.jpg"},
		City:          "Rosso",
		District:      "Nord",
		Latitude:      16.5137,
		Longitude:     -15.8070,
		Offerings:     []string{"Agronomie", "Génie rural"},
	},
	{
		Name:          "Lycée National de Zouérat",
		Level:         catalog.LevelHighSchool,
		OwnershipType: catalog.OwnershipPublic,
		Description:   "Premier lycée public du Tiris Zemmour (1967).",
		Phone:         "+222 22 11 22 33",
		PhotoURLs:     []string{"/images/image6.jpg", "/images/image7.jpg"},
		City:          "Zouérat",
		District:      "Ouest",
		Latitude:      22.7343,
		Longitude:     -12.4526,
		Offerings:     []string{"Série scientifique", "Série technique"},
	},
	{
		Name:          "Centre de Formation Polyvalente de Sélibaby",
		Level:         catalog.LevelVocational,
		OwnershipType: catalog.OwnershipPublic,
		Description:   "Formations courtes en agriculture, énergie solaire et micro-entrepreneuriat.",
		Phone:         "+222 48 36 49 01",
		PhotoURLs:     []string{"/images/image8.jpg"},
		City:          "Sélibaby",
		District:      "Sud-Est",
		Latitude:      15.1589,
		Longitude:     -12.1843,
		Offerings:     []string{"Technicien agricole", "Installateur PV"},
	},
	{
		Name:          "Institut Supérieur du Numérique (SupNum)",
		Level:         catalog.LevelHigher,
		OwnershipType: catalog.OwnershipPublic,
		Description:   "Institut public spécialisé en technologies numériques et innovation, basé à Nouakchott.",
		Phone:         "+222 44 44 44 44",
		Website:       "https://supnum.mr",
		PhotoURLs:     []string{"/images/image9.webp", "/images/image10.webp", "/images/image11.webp"},
		City:          "Nouakchott",
		District:      "Ksar",
		Latitude:      18.0880,
		Longitude:     -15.9742,
		Offerings:     []string{"Développement Web", "Sécurité Informatique", "Réseaux & Télécoms"},
	},
	{
		Name:          "Écoles Maarif",
		Level:         catalog.LevelPrimary,
		OwnershipType: catalog.OwnershipPrivate,
		Description:   "Établissement privé mauritanien reconnu, offrant un enseignement bilingue de qualité.",
		Phone:         "+222 33 33 33 33",
		Website:       "https://maarif.mr",
		PhotoURLs:     []string{"/images/image12.jpg", "/images/image13.webp"},
		City:          "Nouakchott",
		District:      "Toujounine",
		Latitude:      18.0902,
		Longitude:     -15.9784,
		Offerings:     []string{"Maternelle", "Primaire", "Collège"},
	},
}

// Load writes records into store as approved establishments. Records sharing a
// (city, district) pair share one location.
func Load(ctx context.Context, store catalog.Store, records []Record) ([]catalog.Establishment, error) {
	type locationKey struct{ city, district string }
	locations := make(map[locationKey]uint64)

	established := make([]catalog.Establishment, 0, len(records))
	for i, record := range records {
		key := locationKey{city: record.City, district: record.District}
		locationID, ok := locations[key]
		if !ok {
			location, err := store.CreateLocation(ctx, catalog.Location{
				City:      record.City,
				District:  record.District,
				Latitude:  record.Latitude,
				Longitude: record.Longitude,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create location for %q: %w", record.Name, err)
			}
			locationID = location.ID
			locations[key] = locationID
		}

		establishment, err := store.CreateEstablishment(ctx, catalog.NewEstablishment{
			Name:          record.Name,
			Phone:         record.Phone,
			Level:         record.Level,
			OwnershipType: record.OwnershipType,
			Description:   record.Description,
			Website:       record.Website,
			LocationID:    locationID,
			Offerings:     record.Offerings,
			PhotoURLs:     record.PhotoURLs,
			Owner: catalog.Owner{
				Name:  record.Name,
				Email: fmt.Sprintf("seed-%d@schoolfinder.local", i+1),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create establishment %q: %w", record.Name, err)
		}

		if err := store.SetApprovalStatus(ctx, establishment.ID, catalog.StatusApproved); err != nil {
			return nil, fmt.Errorf("failed to approve establishment %q: %w", record.Name, err)
		}
		establishment.Status = catalog.StatusApproved
		established = append(established, *establishment)
	}

	return established, nil
}
