package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pagegen/internal/domain"
	"storefront/pagegen/internal/domain/task"
)

func newTestQueue(t *testing.T) *RedisQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	q, err := NewRedisQueue(context.Background(), rdb, "store", "test_group")
	require.NoError(t, err)
	q.block = 10 * time.Millisecond
	return q
}

func TestEnsureStreamsExistIsIdempotent(t *testing.T) {
	q := newTestQueue(t)
	require.NoError(t, q.EnsureStreamsExist(context.Background()))
}

func TestAddGetAck(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	pageTask := &task.PageTask{
		StoreID: "store",
		BuildID: "build-1",
		Page: domain.PageDescriptor{
			Path:     "/mouse/p",
			Template: domain.TemplateProduct,
			Context:  domain.PageContext{"slug": "mouse", "staticPath": true},
		},
	}

	id, err := q.AddTask(ctx, pageTask)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stream := q.Stream("PageTask")
	assert.Equal(t, "storefront:stream:store:PageTask", stream)
	msg, err := q.GetTask(ctx, "worker-1", stream)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, id, msg.ID)
	assert.Equal(t, "PageTask", msg.Values["task_type"])

	decoded, err := task.UnmarshalTask[*task.PageTask]([]byte(msg.Values["task_data"].(string)))
	require.NoError(t, err)
	assert.Equal(t, "store", decoded.StoreID)
	assert.Equal(t, "/mouse/p", decoded.Page.Path)
	assert.Equal(t, "mouse", decoded.Page.Context["slug"])

	require.NoError(t, q.AckTask(ctx, stream, msg.ID))

	empty, err := q.GetTask(ctx, "worker-1", stream)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestAutoClaimRecoversUnackedTask(t *testing.T) {
	ctx := context.Background()
	q := newTestQueue(t)

	id, err := q.AddTask(ctx, &task.RedirectTask{
		StoreID:  "store",
		BuildID:  "build-1",
		Redirect: domain.Redirect{FromPath: "/404", ToPath: "/404/__not_found__", StatusCode: 404},
	})
	require.NoError(t, err)

	stream := q.Stream("RedirectTask")
	msg, err := q.GetTask(ctx, "crashed-worker", stream)
	require.NoError(t, err)
	require.NotNil(t, msg)

	claimed, err := q.AutoClaim(ctx, "autoclaimer", stream, 0)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, id, claimed[0].ID)
	assert.Equal(t, "RedirectTask", claimed[0].Values["task_type"])

	require.NoError(t, q.AckTask(ctx, stream, claimed[0].ID))

	pending, err := q.redisClient.XPending(ctx, stream, q.groupName).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}
