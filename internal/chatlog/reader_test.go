package chatlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dealflow/internal/common"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string // trader|text per row
		wantTS  time.Time
		wantErr error
	}{
		{
			name: "canonical header",
			input: "date,time,bank,trader_name,text\n" +
				"2024-03-01,09:15:30,VCB,Toàn,bid 25 3u\n" +
				"2024-03-01,09:16:10,TCB,Minh,buy 2u\n",
			want:   []string{"Toàn|bid 25 3u", "Minh|buy 2u"},
			wantTS: time.Date(2024, 3, 1, 9, 15, 30, 0, time.UTC),
		},
		{
			name: "aliases and day-first date",
			input: "Date,time,bank_name,trader_name,mess\n" +
				"01/03/2024,09:15,VCB,Toàn,\"bid 20, ask 23\"\n",
			want:   []string{"Toàn|bid 20, ask 23"},
			wantTS: time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC),
		},
		{
			name: "byte order mark and extra columns",
			input: "\ufeffid,date,time,bank,trader_name,text\n" +
				"7,2024/03/01,09:15:30,VCB,Toàn,done\n",
			want:   []string{"Toàn|done"},
			wantTS: time.Date(2024, 3, 1, 9, 15, 30, 0, time.UTC),
		},
		{
			name: "blank text is kept",
			input: "date,time,bank,trader_name,text\n" +
				"2024-03-01,09:15:30,VCB,Toàn,\n",
			want:   []string{"Toàn|"},
			wantTS: time.Date(2024, 3, 1, 9, 15, 30, 0, time.UTC),
		},
		{
			name:  "empty input",
			input: "",
		},
		{
			name:    "missing column",
			input:   "date,time,bank,text\n",
			wantErr: ErrMissingColumn,
		},
		{
			name: "bad date",
			input: "date,time,bank,trader_name,text\n" +
				"March 1,09:15:30,VCB,Toàn,bid 25\n",
			wantErr: common.ErrInvalidMessage,
		},
		{
			name: "bad clock",
			input: "date,time,bank,trader_name,text\n" +
				"2024-03-01,9am,VCB,Toàn,bid 25\n",
			wantErr: common.ErrInvalidMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := Read(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, msgs, len(tt.want))

			for i, w := range tt.want {
				assert.Equal(t, w, msgs[i].TraderName+"|"+msgs[i].Text)
			}
			if len(msgs) > 0 {
				assert.Equal(t, tt.wantTS, msgs[0].Timestamp)
				assert.Equal(t, "VCB", msgs[0].Bank)
			}
		})
	}
}

func TestRead_ErrorNamesLine(t *testing.T) {
	input := "date,time,bank,trader_name,text\n" +
		"2024-03-01,09:15:30,VCB,Toàn,bid 25\n" +
		"2024-03-01,25:99,VCB,Toàn,bid 25\n"

	_, err := Read(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"date,time,bank,trader_name,text\n2024-03-01,09:15:30,VCB,Toàn,bid 25 3u\n"), 0o600))

	msgs, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "bid 25 3u", msgs[0].Text)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
