package boltstore

import (
	"context"
	"encoding/json"

	bolt "github.com/boltdb/bolt"

	"telegram-vpn-shop/internal/domain"
	"telegram-vpn-shop/internal/domain/model"
	"telegram-vpn-shop/internal/domain/ports/repository"
)

const bucketName = "payment_intents"

var _ repository.IntentRepository = (*IntentRepo)(nil)

// IntentRepo stores pending payment intents in a dedicated bucket.
// Take performs the read and the delete inside one Update transaction;
// Bolt serializes writers, so only a single caller can claim an intent.
type IntentRepo struct {
	db *bolt.DB
}

// NewIntentRepo ensures the intents bucket exists on the shared handle.
func NewIntentRepo(db *bolt.DB) (*IntentRepo, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &IntentRepo{db: db}, nil
}

func (r *IntentRepo) Save(ctx context.Context, intent *model.PaymentIntent) error {
	if intent == nil || intent.ID == "" {
		return domain.ErrInvalidArgument
	}
	data, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(intent.ID), data)
	})
}

func (r *IntentRepo) Find(ctx context.Context, id string) (*model.PaymentIntent, error) {
	var intent model.PaymentIntent
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(id))
		if v == nil {
			return domain.ErrIntentNotFound
		}
		return json.Unmarshal(v, &intent)
	})
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// Take claims the intent: the get and the delete share one write
// transaction, so a second concurrent Take observes an empty key.
func (r *IntentRepo) Take(ctx context.Context, id string) (*model.PaymentIntent, error) {
	var intent model.PaymentIntent
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		v := b.Get([]byte(id))
		if v == nil {
			return domain.ErrIntentNotFound
		}
		if err := json.Unmarshal(v, &intent); err != nil {
			return err
		}
		return b.Delete([]byte(id))
	})
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *IntentRepo) Delete(ctx context.Context, id string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(id))
	})
}
