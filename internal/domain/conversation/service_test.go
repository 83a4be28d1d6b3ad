package conversation_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdesk/internal/domain/conversation"
	"botdesk/internal/snapshot"
)

const sampleCSV = `phone,message,date,direction
5215512345678@s.whatsapp.net,hola,2025-03-01 14:05,in
5215512345678@s.whatsapp.net,buenas tardes,2025-03-01 14:06,out
5215598765432@s.whatsapp.net,precio?,2025-03-02 09:00,in
`

func newService(t *testing.T) *conversation.Service {
	t.Helper()
	snaps, err := snapshot.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { snaps.Close() })
	return conversation.NewService(snaps, nil)
}

func TestImportPersistsAndLists(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	imported, skipped, err := svc.Import(ctx, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, 0, skipped)

	conversations, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	byPhone := map[string]int{}
	for _, c := range conversations {
		byPhone[c.Phone] = len(c.Messages)
	}
	assert.Equal(t, 2, byPhone["5512345678"])
	assert.Equal(t, 1, byPhone["5598765432"])
}

func TestImportReplacesPreviousSet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, _, err := svc.Import(ctx, strings.NewReader(sampleCSV))
	require.NoError(t, err)

	smaller := "phone,message,date\n5215511111111@s.whatsapp.net,nuevo,2025-04-01 10:00\n"
	imported, _, err := svc.Import(ctx, strings.NewReader(smaller))
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	conversations, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "5511111111", conversations[0].Phone)
}

func TestListBeforeAnyImport(t *testing.T) {
	svc := newService(t)

	conversations, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, conversations)
}

func TestImportRejectsMalformedHeader(t *testing.T) {
	svc := newService(t)

	_, _, err := svc.Import(context.Background(), strings.NewReader("foo,bar\n1,2\n"))
	assert.ErrorIs(t, err, conversation.ErrMissingColumns)
}

func TestAnalysisSummarizesStoredSet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, _, err := svc.Import(ctx, strings.NewReader(sampleCSV))
	require.NoError(t, err)

	a, err := svc.Analysis(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Conversations)
	assert.Equal(t, 3, a.TotalMessages)
	assert.Equal(t, 2, a.Inbound)
	assert.Equal(t, 1, a.Outbound)
	assert.Equal(t, 14, a.BusiestHour)
	require.NotEmpty(t, a.TopContacts)
	assert.Equal(t, "5512345678", a.TopContacts[0].Phone)
}
