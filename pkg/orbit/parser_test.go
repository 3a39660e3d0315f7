package orbit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "firstname", normalizeHeader("First Name"))
	assert.Equal(t, "firstname", normalizeHeader("\uFEFFFIRST_NAME"))
	assert.Equal(t, "connectedon", normalizeHeader("  Connected-On "))
	assert.Equal(t, "", normalizeHeader(""))
}

func TestParser_Parse(t *testing.T) {
	parser := NewParser()

	t.Run("linkedin export", func(t *testing.T) {
		csv := strings.Join([]string{
			"First Name,Last Name,URL,Email Address,Company,Position,Connected On",
			"Jane,Doe,https://linkedin.com/in/janedoe,jane@doe.com,Acme Corp,Partner,01 Aug 2026",
			"John,Smith,https://linkedin.com/in/jsmith,,Beta LLC,Principal,15 Jul 2026",
		}, "\n")

		result, err := parser.Parse(strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 0, result.Skipped)
		assert.Empty(t, result.Errors)
		assert.Equal(t, []string{"firstname", "lastname", "url", "emailaddress", "company", "position", "connectedon"}, result.Columns)

		require.Len(t, result.Records, 2)
		assert.Equal(t, Record{
			FirstName:   "Jane",
			LastName:    "Doe",
			FullName:    "Jane Doe",
			Company:     "Acme Corp",
			Position:    "Partner",
			LinkedinURL: "https://linkedin.com/in/janedoe",
			ConnectedOn: "01 Aug 2026",
		}, result.Records[0])
		assert.Equal(t, "John Smith", result.Records[1].FullName)
	})

	t.Run("close enough headers", func(t *testing.T) {
		csv := strings.Join([]string{
			"\uFEFFFIRST_NAME,Last-Name,Company Name,Job Title,Geo Region,Profile Link",
			"Ada,Lovelace,Analytical Engines,Founder,London,https://linkedin.com/in/ada",
		}, "\n")

		result, err := parser.Parse(strings.NewReader(csv))
		require.NoError(t, err)

		require.Len(t, result.Records, 1)
		record := result.Records[0]
		assert.Equal(t, "Ada", record.FirstName)
		assert.Equal(t, "Lovelace", record.LastName)
		assert.Equal(t, "Ada Lovelace", record.FullName)
		assert.Equal(t, "Analytical Engines", record.Company)
		assert.Equal(t, "Founder", record.Position)
		assert.Equal(t, "London", record.Location)
		assert.Equal(t, "https://linkedin.com/in/ada", record.LinkedinURL)
	})

	t.Run("splits full name into parts", func(t *testing.T) {
		csv := strings.Join([]string{
			"Name,Organization,Role",
			"Grace Brewster Hopper,Navy,Rear Admiral",
			"Prince,Paisley Park,Artist",
		}, "\n")

		result, err := parser.Parse(strings.NewReader(csv))
		require.NoError(t, err)

		require.Len(t, result.Records, 2)
		assert.Equal(t, "Grace", result.Records[0].FirstName)
		assert.Equal(t, "Brewster Hopper", result.Records[0].LastName)
		assert.Equal(t, "Grace Brewster Hopper", result.Records[0].FullName)
		assert.Equal(t, "Navy", result.Records[0].Company)
		assert.Equal(t, "Rear Admiral", result.Records[0].Position)

		assert.Equal(t, "Prince", result.Records[1].FirstName)
		assert.Equal(t, "", result.Records[1].LastName)
	})

	t.Run("skips rows without a name", func(t *testing.T) {
		csv := strings.Join([]string{
			"First Name,Last Name,Company",
			",,Ghost Corp",
			"   ,  ,",
			"Jane,,Acme",
		}, "\n")

		result, err := parser.Parse(strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, 3, result.TotalRows)
		assert.Equal(t, 2, result.Skipped)
		require.Len(t, result.Records, 1)
		assert.Equal(t, "Jane", result.Records[0].FullName)
		assert.Equal(t, "Jane", result.Records[0].FirstName)
	})

	t.Run("tolerates short rows", func(t *testing.T) {
		csv := strings.Join([]string{
			"First Name,Last Name,Company,Position",
			"Jane,Doe",
			"John,Smith,Beta LLC,Principal,extra-field",
		}, "\n")

		result, err := parser.Parse(strings.NewReader(csv))
		require.NoError(t, err)

		require.Len(t, result.Records, 2)
		assert.Equal(t, "", result.Records[0].Company)
		assert.Equal(t, "Beta LLC", result.Records[1].Company)
	})

	t.Run("exact alias wins over substring match", func(t *testing.T) {
		csv := strings.Join([]string{
			"First Name,Given Name,Last Name",
			"Actual,Preferred,Person",
			",Fallback,Person",
		}, "\n")

		result, err := parser.Parse(strings.NewReader(csv))
		require.NoError(t, err)

		require.Len(t, result.Records, 2)
		assert.Equal(t, "Actual", result.Records[0].FirstName)
		assert.Equal(t, "Fallback", result.Records[1].FirstName)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := parser.Parse(strings.NewReader(""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no headers")
	})

	t.Run("header only", func(t *testing.T) {
		result, err := parser.Parse(strings.NewReader("First Name,Last Name\n"))
		require.NoError(t, err)
		assert.Equal(t, 0, result.TotalRows)
		assert.Empty(t, result.Records)
	})
}

func TestRecord_Request(t *testing.T) {
	record := Record{
		FirstName: "Jane",
		LastName:  "Doe",
		FullName:  "Jane Doe",
		Company:   "Acme Corp",
	}

	request := record.Request()
	require.NotNil(t, request.FullName)
	assert.Equal(t, "Jane Doe", *request.FullName)
	require.NotNil(t, request.Company)
	assert.Equal(t, "Acme Corp", *request.Company)
	assert.Nil(t, request.Position)
	assert.Nil(t, request.Location)
	assert.Nil(t, request.LinkedinURL)
	assert.Nil(t, request.ConnectedOn)
}
