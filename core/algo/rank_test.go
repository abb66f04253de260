package algo

import (
	"testing"

	"github.com/huangsam/repotrend/schema"
	"github.com/stretchr/testify/assert"
)

func row(owner, name string, stars int) schema.RankedRepository {
	return schema.RankedRepository{
		Repository: schema.RepositoryRef{Owner: owner, Name: name},
		Totals:     schema.Totals{Stars: stars},
	}
}

// TestRankRepositories tests repository ranking logic.
func TestRankRepositories(t *testing.T) {
	rows := []schema.RankedRepository{
		row("pallets", "flask", 60),
		row("django", "django", 80),
		row("encode", "starlette", 10),
		row("aio-libs", "aiohttp", 60),
	}

	t.Run("rank and limit", func(t *testing.T) {
		ranked := RankRepositories(rows, 2)
		assert.Len(t, ranked, 2)
		assert.Equal(t, "django/django", ranked[0].Repository.FullName())
		assert.Equal(t, 1, ranked[0].Rank)
		assert.Equal(t, "aio-libs/aiohttp", ranked[1].Repository.FullName())
		assert.Equal(t, 2, ranked[1].Rank)
	})

	t.Run("limit exceeds length", func(t *testing.T) {
		assert.Len(t, RankRepositories(rows, 10), 4)
	})

	t.Run("zero limit returns all", func(t *testing.T) {
		assert.Len(t, RankRepositories(rows, 0), 4)
	})

	t.Run("stars in descending order", func(t *testing.T) {
		ranked := RankRepositories(rows, 10)
		for i := 1; i < len(ranked); i++ {
			assert.LessOrEqual(t, ranked[i].Totals.Stars, ranked[i-1].Totals.Stars)
		}
	})

	t.Run("input is not reordered", func(t *testing.T) {
		_ = RankRepositories(rows, 10)
		assert.Equal(t, "pallets/flask", rows[0].Repository.FullName())
		assert.Zero(t, rows[0].Rank)
	})
}

func TestGrowthSince(t *testing.T) {
	buckets := schema.DateBucketMap{"2024-01-01": 5, "2024-02-01": 3, "2024-02-15": -1}
	assert.Equal(t, 2, GrowthSince(buckets, "2024-02-01"))
	assert.Equal(t, 7, GrowthSince(buckets, "2023-12-31"))
	assert.Equal(t, 0, GrowthSince(buckets, "2025-01-01"))
	assert.Equal(t, 0, GrowthSince(nil, "2024-01-01"))
}
