package services

import (
	"testing"
	"time"

	"fumotion/internal/auth"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewsBetweenDriverAndPassenger(t *testing.T) {
	f := newFixture(t)
	reviews := ReviewService{Base: f.base}
	driver, p, outsider := f.user("Driver"), f.user("P"), f.user("Outsider")
	trip := f.trip(driver.ID, 3, 48*time.Hour)

	_, err := f.bookingService().CreateBooking(f.ctx, trip.ID, p.ID, 1)
	require.NoError(t, err)

	_, err = reviews.Create(f.ctx, trip.ID, p.ID, models.Review{RevieweeID: driver.ID, Rating: 5})
	assert.True(t, domain.IsInvalidOperation(err), "trip not completed yet: %v", err)

	_, err = f.tripService().UpdateStatus(f.ctx, trip.ID, domain.RequestContext{UserID: driver.ID}, domain.TripCompleted)
	require.NoError(t, err)

	_, err = reviews.Create(f.ctx, trip.ID, p.ID, models.Review{RevieweeID: driver.ID, Rating: 6})
	assert.True(t, domain.IsValidation(err), err)

	_, err = reviews.Create(f.ctx, trip.ID, p.ID, models.Review{RevieweeID: p.ID, Rating: 4})
	assert.True(t, domain.IsInvalidOperation(err), err)

	_, err = reviews.Create(f.ctx, trip.ID, outsider.ID, models.Review{RevieweeID: driver.ID, Rating: 1})
	assert.True(t, domain.IsForbidden(err), err)

	_, err = reviews.Create(f.ctx, trip.ID, driver.ID, models.Review{RevieweeID: outsider.ID, Rating: 1})
	assert.True(t, domain.IsValidation(err), err)

	rv, err := reviews.Create(f.ctx, trip.ID, p.ID, models.Review{RevieweeID: driver.ID, Rating: 5, Comment: " smooth ride "})
	require.NoError(t, err)
	assert.Equal(t, "smooth ride", rv.Comment)

	_, err = reviews.Create(f.ctx, trip.ID, p.ID, models.Review{RevieweeID: driver.ID, Rating: 3})
	assert.True(t, domain.IsConflict(err), err)

	_, err = reviews.Create(f.ctx, trip.ID, driver.ID, models.Review{RevieweeID: p.ID, Rating: 4})
	require.NoError(t, err)

	page, err := reviews.ListForUser(f.ctx, driver.ID, domain.NewPagination(1, 10, 20, 100))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "P", page.Items[0].ReviewerName)

	users := UserService{Base: f.base, Tokens: auth.NewIssuer("x", time.Hour)}
	pub, err := users.Public(f.ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pub.ReviewCount)
	assert.InDelta(t, 5.0, pub.AverageRating, 0.001)
}
