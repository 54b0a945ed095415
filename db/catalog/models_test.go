package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	assert := require.New(t)

	assert.Equal("zouerat", Fold("Zouérat"))
	assert.Equal("nouakchott", Fold("  NouakchÔtt "))
	assert.Equal("ecoles maarif", Fold("Écoles Maarif"))
	assert.Equal("", Fold("   "))
}

func TestParseOwnershipType(t *testing.T) {
	testCases := []struct {
		input    string
		expected OwnershipType
		fails    bool
	}{
		{input: "public", expected: OwnershipPublic},
		{input: "Publique", expected: OwnershipPublic},
		{input: "privée", expected: OwnershipPrivate},
		{input: "Privé", expected: OwnershipPrivate},
		{input: "PRIVATE", expected: OwnershipPrivate},
		{input: "semi-public", fails: true},
		{input: "", fails: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.input, func(t *testing.T) {
			assert := require.New(t)
			ownership, err := ParseOwnershipType(testCase.input)
			if testCase.fails {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(testCase.expected, ownership)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert := require.New(t)

	level, err := ParseLevel("superieur")
	assert.NoError(err)
	assert.Equal(LevelHigher, level)

	level, err = ParseLevel("Lycée")
	assert.NoError(err)
	assert.Equal(LevelHighSchool, level)

	_, err = ParseLevel("doctorat")
	assert.Error(err)
}

func TestParseApprovalStatus(t *testing.T) {
	assert := require.New(t)

	status, err := ParseApprovalStatus("Approved")
	assert.NoError(err)
	assert.Equal(StatusApproved, status)

	_, err = ParseApprovalStatus("maybe")
	assert.Error(err)
}

func TestLocationValidate(t *testing.T) {
	testCases := []struct {
		name     string
		location Location
		valid    bool
	}{
		{name: "Valid", location: Location{City: "Rosso", Latitude: 16.5137, Longitude: -15.807}, valid: true},
		{name: "Poles and antimeridian", location: Location{City: "Edge", Latitude: -90, Longitude: 180}, valid: true},
		{name: "MissingCity", location: Location{City: " ", Latitude: 1, Longitude: 1}},
		{name: "LatitudeTooHigh", location: Location{City: "X", Latitude: 90.5, Longitude: 1}},
		{name: "LongitudeTooLow", location: Location{City: "X", Latitude: 1, Longitude: -181}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			err := testCase.location.Validate()
			if testCase.valid {
				assert.NoError(err)
				return
			}
			assert.Error(err)
			assert.True(errors.Is(err, ErrValidation))
		})
	}
}

func TestLocationLabel(t *testing.T) {
	assert := require.New(t)

	assert.Equal("Nouakchott, Ksar", Location{City: "Nouakchott", District: "Ksar"}.Label())
	assert.Equal("Rosso", Location{City: "Rosso"}.Label())
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	assert := require.New(t)

	assert.True(errors.Is(&NotFoundError{Entity: "location", ID: "1"}, ErrNotFound))
	assert.True(errors.Is(&ConflictError{Entity: "owner", Reason: "email taken"}, ErrConflict))
	assert.True(errors.Is(&InvalidKeyError{Key: "", Reason: "empty"}, ErrInvalidKey))
	assert.False(errors.Is(&NotFoundError{}, ErrConflict))
}
