package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"borelog/domain/borehole"
	"borelog/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Record(ctx context.Context, upload borehole.Upload) error {
	args := m.Called(ctx, upload)
	return args.Error(0)
}

func (m *MockLedger) Recent(ctx context.Context, limit int) ([]borehole.Upload, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]borehole.Upload), args.Error(1)
}

const boreholeCSV = "BOREHOLE,Depth,Classification,SPTValue,Gravel\n" +
	"BH-1,1.0,CL,10,\n" +
	"BH-1,3.0,SM,20,\n" +
	"BH-2,0.5,GW,35,40\n" +
	"BH-2,2.5,GP,38,55\n"

func newController(t *testing.T) (*Controller, *MockLedger) {
	t.Helper()
	ledger := &MockLedger{}
	ledger.On("Record", mock.Anything, mock.AnythingOfType("borehole.Upload")).Return(nil).Maybe()
	return NewController(DefaultOptions(), ledger), ledger
}

func upload(t *testing.T, c *Controller, name, data string) State {
	t.Helper()
	st, err := c.Apply(context.Background(), Upload{Filename: name, Data: []byte(data)})
	require.NoError(t, err)
	return st
}

func TestController_InitialState(t *testing.T) {
	c, _ := newController(t)
	st := c.Snapshot()

	assert.False(t, st.Loaded())
	assert.Nil(t, st.Boreholes())
	_, err := st.Summary()
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	_, err = st.Profile()
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestController_Upload(t *testing.T) {
	c, ledger := newController(t)
	st := upload(t, c, "logs.csv", boreholeCSV)

	assert.True(t, st.Loaded())
	assert.Equal(t, "logs.csv", st.Filename)
	assert.NotEmpty(t, st.UploadID)
	assert.Equal(t, "BH-1", st.Selected)
	assert.Equal(t, []string{"BH-1", "BH-2"}, st.Boreholes())
	require.NotNil(t, st.Message)
	assert.Equal(t, LevelSuccess, st.Message.Level)
	assert.Equal(t, "logs.csv uploaded successfully!", st.Message.Text)

	ledger.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(u borehole.Upload) bool {
		return u.ID == st.UploadID && u.Rows == 4 && u.Boreholes == 2
	}))

	summary, err := st.Summary()
	require.NoError(t, err)
	assert.Len(t, summary, 3)

	p, err := st.Profile()
	require.NoError(t, err)
	assert.Equal(t, "BH-1", p.Borehole)
	assert.Len(t, p.Layers, 1)
}

func TestController_FailedUploadKeepsTable(t *testing.T) {
	c, _ := newController(t)
	before := upload(t, c, "logs.csv", boreholeCSV)

	st, err := c.Apply(context.Background(), Upload{Filename: "empty.csv", Data: []byte("BOREHOLE,Depth\n")})
	require.Error(t, err)
	assert.Equal(t, before.UploadID, st.UploadID)
	assert.Equal(t, before.Selected, st.Selected)
	require.NotNil(t, st.Message)
	assert.Equal(t, LevelWarning, st.Message.Level)
	assert.Contains(t, st.Message.Text, "The uploaded file is empty")

	st, err = c.Apply(context.Background(), Upload{Filename: "bad.csv", Data: []byte("a,b\n\"x,1\n")})
	require.Error(t, err)
	assert.Equal(t, LevelError, st.Message.Level)
	assert.Contains(t, st.Message.Text, "Error reading file")
	assert.Equal(t, before.UploadID, st.UploadID)
}

func TestController_LedgerFailureIsNotFatal(t *testing.T) {
	ledger := &MockLedger{}
	ledger.On("Record", mock.Anything, mock.Anything).Return(fmt.Errorf("database is locked"))
	c := NewController(DefaultOptions(), ledger)

	st, err := c.Apply(context.Background(), Upload{Filename: "logs.csv", Data: []byte(boreholeCSV)})
	require.NoError(t, err)
	assert.True(t, st.Loaded())
	ledger.AssertNumberOfCalls(t, "Record", 1)
}

func TestController_SelectBorehole(t *testing.T) {
	c, _ := newController(t)

	_, err := c.Apply(context.Background(), SelectBorehole{ID: "BH-1"})
	require.Error(t, err, "nothing uploaded")

	first := upload(t, c, "logs.csv", boreholeCSV)
	st, err := c.Apply(context.Background(), SelectBorehole{ID: "BH-2"})
	require.NoError(t, err)
	assert.Equal(t, "BH-2", st.Selected)
	assert.Nil(t, st.Message)

	sub, err := st.Subset()
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Len())

	// Table-level views are shared across selections.
	s1, _ := first.Summary()
	s2, _ := st.Summary()
	assert.Same(t, &s1[0], &s2[0])

	st, err = c.Apply(context.Background(), SelectBorehole{ID: "BH-9"})
	require.Error(t, err)
	assert.Equal(t, "BH-2", st.Selected)
	assert.Equal(t, LevelError, st.Message.Level)
}

func TestController_Reset(t *testing.T) {
	c, _ := newController(t)
	upload(t, c, "logs.csv", boreholeCSV)

	st, err := c.Apply(context.Background(), Reset{})
	require.NoError(t, err)
	assert.False(t, st.Loaded())
	assert.Empty(t, st.Selected)
	require.NotNil(t, st.Message)
	assert.Equal(t, "Data has been reset.", st.Message.Text)
}

func TestController_UnknownCommand(t *testing.T) {
	c, _ := newController(t)
	_, err := c.Apply(context.Background(), nil)
	assert.True(t, errors.Is(err, errors.CodeInvalidInput))
}

func TestController_Notify(t *testing.T) {
	c, _ := newController(t)
	c.Notify(LevelError, "Choose a CSV file to upload.")
	st := c.Snapshot()
	require.NotNil(t, st.Message)
	assert.Equal(t, "Choose a CSV file to upload.", st.Message.Text)
	assert.False(t, st.Loaded())
}

func TestController_ConcurrentCommands(t *testing.T) {
	c, _ := newController(t)
	upload(t, c, "logs.csv", boreholeCSV)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "BH-1"
			if i%2 == 0 {
				id = "BH-2"
			}
			st, err := c.Apply(context.Background(), SelectBorehole{ID: id})
			if err != nil {
				return
			}
			if _, err := st.Profile(); err != nil {
				t.Errorf("profile for %s: %v", st.Selected, err)
			}
		}(i)
	}
	wg.Wait()
	assert.Contains(t, []string{"BH-1", "BH-2"}, c.Snapshot().Selected)
}
