package dataset

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffClassification,content,explanation,message_to_author\n" +
		"TOXIC,You are an idiot,Personal insult,Please be respectful.\n" +
		"good,\"Thanks, this helped!\",Gratitude,\n" +
		"SPAM,Buy now,Advert,N/A\n" +
		"NEUTRAL,The meeting is at <b>noon</b> &amp; lunch after,Fact,N/A\n"

	examples, err := ReadCSV(context.Background(), strings.NewReader(input), "test.csv", zap.NewNop())
	require.NoError(t, err)
	require.Len(t, examples, 3)

	assert.Equal(t, domain.LabeledExample{
		Content:        "You are an idiot",
		Classification: domain.LabelToxic,
		Explanation:    "Personal insult",
		AuthorMessage:  "Please be respectful.",
	}, examples[0])
	assert.Equal(t, domain.LabelGood, examples[1].Classification)
	assert.Equal(t, "Thanks, this helped!", examples[1].Content)
	assert.Equal(t, domain.AuthorMessageNone, examples[1].AuthorMessage)
	assert.Equal(t, "The meeting is at noon & lunch after", examples[2].Content)
}

func TestReadCSVWithoutMessageColumn(t *testing.T) {
	input := "content,classification,explanation\nhello there,NEUTRAL,greeting\n"

	examples, err := ReadCSV(context.Background(), strings.NewReader(input), "test.csv", zap.NewNop())
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, domain.AuthorMessageNone, examples[0].AuthorMessage)
	assert.False(t, examples[0].HasAuthorMessage())
}

func TestReadCSVMissingColumn(t *testing.T) {
	input := "classification,explanation\nTOXIC,x\n"

	_, err := ReadCSV(context.Background(), strings.NewReader(input), "test.csv", zap.NewNop())
	var dsErr *errors.DatasetError
	require.True(t, stderrors.As(err, &dsErr))
	assert.Equal(t, ColumnContent, dsErr.Column)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader(""), "test.csv", zap.NewNop())
	var dsErr *errors.DatasetError
	require.True(t, stderrors.As(err, &dsErr))
}

func TestReadCSVHeaderOnly(t *testing.T) {
	examples, err := ReadCSV(context.Background(), strings.NewReader("classification,content,explanation\n"), "test.csv", zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, examples)
}

func TestCSVSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "examples.csv")
	require.NoError(t, os.WriteFile(path, []byte("classification,content,explanation\nGOOD,Great job,Praise\n"), 0o600))

	src := NewCSVSource(path, zap.NewNop())
	examples, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "csv:"+path, src.Name())

	_, err = NewCSVSource(filepath.Join(t.TempDir(), "missing.csv"), zap.NewNop()).Load(context.Background())
	var dsErr *errors.DatasetError
	require.True(t, stderrors.As(err, &dsErr))
}

func TestCleanContent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain   text \n here ", "plain text here"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"<p>Hello <i>world</i></p>", "Hello world"},
		{"See [[Talk:Page|talk]] {{cite}} now", "See now"},
		{"What?????", "What???"},
		{"Wow!!!!!!! ok.....", "Wow!!! ok..."},
		{"I <3 you", "I <3 you"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanContent(tt.in), tt.in)
	}
}
