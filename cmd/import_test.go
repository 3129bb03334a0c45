package main

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestImportFile(t *testing.T) {
	input := writeFile(t, "leads.csv", `name,phone,email
John Doe,123-456-7890,john@example.com
,555-000-1111,nobody@example.com
Jane Smith,,jane@example.com
Jane Smith,987-654-3210,JANE@example.com
`)

	nc := new(mockNotion)
	nc.On("CreatePage", mock.Anything, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Return(&notionapi.Page{ID: "new"}, nil)

	created, err := importFile(context.Background(), nc, "db-leads", input)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	nc.AssertNumberOfCalls(t, "CreatePage", 2)
}

func TestImportFile_CreateError(t *testing.T) {
	input := writeFile(t, "leads.csv", "name,phone,email\nJohn Doe,123-456-7890,john@example.com\n")

	nc := new(mockNotion)
	nc.On("CreatePage", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

	created, err := importFile(context.Background(), nc, "db-leads", input)
	require.Error(t, err)
	assert.Zero(t, created)
}

func TestImportFile_Missing(t *testing.T) {
	_, err := importFile(context.Background(), new(mockNotion), "db-leads", "/does/not/exist.csv")
	assert.Error(t, err)
}
