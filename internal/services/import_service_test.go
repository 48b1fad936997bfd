package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dvhs/alumnirank/internal/errors"
	"github.com/dvhs/alumnirank/internal/models"
	"github.com/dvhs/alumnirank/internal/services"
	"github.com/dvhs/alumnirank/internal/testutil/mocks"
	"github.com/dvhs/alumnirank/internal/worker"
)

const importCSV = `Profile_Name,Class_Of,College_1_Name,Experience_1_Company
Ada Alumni,2018,UC Berkeley,Stripe
,2019,MIT,Google
Bob Builder,2017,Stanford,Figma
`

func TestImportCSV(t *testing.T) {
	profiles := new(mocks.MockProfileRepository)

	inserted := make(chan []models.Profile, 1)
	profiles.On("InsertBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted <- args.Get(1).([]models.Profile)
		}).
		Return(nil)

	pool := worker.NewPool(1, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	svc := services.NewImportService(profiles, pool, nil)
	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(importCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Accepted)
	require.Len(t, summary.Rejected, 1)
	assert.Equal(t, 3, summary.Rejected[0].Line)

	select {
	case batch := <-inserted:
		require.Len(t, batch, 2)
		assert.Equal(t, "Ada Alumni", batch[0].Name)
		assert.Equal(t, models.DefaultRating, batch[0].Rating)
		assert.Equal(t, "Bob Builder", batch[1].Name)
	case <-time.After(2 * time.Second):
		t.Fatal("import job never ran")
	}
}

func TestImportCSV_Unreadable(t *testing.T) {
	pool := worker.NewPool(1, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	svc := services.NewImportService(new(mocks.MockProfileRepository), pool, nil)
	_, err := svc.ImportCSV(context.Background(), strings.NewReader(""))
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)
}
