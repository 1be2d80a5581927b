package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/edusdk/sessionkit"
)

const (
	defaultRedisPrefix = "sk"

	pairKeySuffix = "pair"
	userKeySuffix = "user"
)

// Redis defines a public type used by sessionkit APIs.
//
// Redis instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

var (
	_ sessionkit.TokenStore   = (*Redis)(nil)
	_ sessionkit.ScratchStore = (*Redis)(nil)
)

// NewRedis describes the newredis operation and its observable behavior.
//
// NewRedis may return an error when input validation, dependency calls, or security checks fail.
// NewRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{
		client: client,
		prefix: prefix,
	}
}

func (r *Redis) key(suffix string) string {
	return r.prefix + ":" + suffix
}

func (r *Redis) scratchKey(key string) string {
	return r.prefix + ":scratch:" + key
}

// Pair describes the pair operation and its observable behavior.
//
// Pair may return an error when input validation, dependency calls, or security checks fail.
// Pair does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) Pair(ctx context.Context) (*sessionkit.TokenPair, error) {
	data, err := r.client.Get(ctx, r.key(pairKeySuffix)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	pair, err := decodePairRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return pair, nil
}

// SetPair describes the setpair operation and its observable behavior.
//
// SetPair may return an error when input validation, dependency calls, or security checks fail.
// SetPair does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) SetPair(ctx context.Context, pair sessionkit.TokenPair) error {
	data, err := encodePairRecord(pair)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(pairKeySuffix), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// RemovePair describes the removepair operation and its observable behavior.
//
// RemovePair may return an error when input validation, dependency calls, or security checks fail.
// RemovePair does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) RemovePair(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(pairKeySuffix)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// User describes the user operation and its observable behavior.
//
// User may return an error when input validation, dependency calls, or security checks fail.
// User does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) User(ctx context.Context) (*sessionkit.User, error) {
	data, err := r.client.Get(ctx, r.key(userKeySuffix)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	user, err := decodeUserRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return user, nil
}

// SetUser describes the setuser operation and its observable behavior.
//
// SetUser may return an error when input validation, dependency calls, or security checks fail.
// SetUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) SetUser(ctx context.Context, user sessionkit.User) error {
	data, err := encodeUserRecord(user)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(userKeySuffix), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// RemoveUser describes the removeuser operation and its observable behavior.
//
// RemoveUser may return an error when input validation, dependency calls, or security checks fail.
// RemoveUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) RemoveUser(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(userKeySuffix)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// SetSession describes the setsession operation and its observable behavior.
//
// SetSession may return an error when input validation, dependency calls, or security checks fail.
// SetSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) SetSession(ctx context.Context, pair sessionkit.TokenPair, user *sessionkit.User) error {
	pairData, err := encodePairRecord(pair)
	if err != nil {
		return err
	}
	var userData []byte
	if user != nil {
		userData, err = encodeUserRecord(*user)
		if err != nil {
			return err
		}
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(pairKeySuffix), pairData, 0)
		if userData != nil {
			pipe.Set(ctx, r.key(userKeySuffix), userData, 0)
		} else {
			pipe.Del(ctx, r.key(userKeySuffix))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Item describes the item operation and its observable behavior.
//
// Item may return an error when input validation, dependency calls, or security checks fail.
// Item does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) Item(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.scratchKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

// SetItem describes the setitem operation and its observable behavior.
//
// SetItem may return an error when input validation, dependency calls, or security checks fail.
// SetItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) SetItem(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.scratchKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// RemoveItem describes the removeitem operation and its observable behavior.
//
// RemoveItem may return an error when input validation, dependency calls, or security checks fail.
// RemoveItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) RemoveItem(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.scratchKey(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
