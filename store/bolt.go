package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	bolt "github.com/boltdb/bolt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arkantrust/vidly/models"
)

const (
	genresBucket    = "genres"
	moviesBucket    = "movies"
	customersBucket = "customers"
	rentalsBucket   = "rentals"
	usersBucket     = "users"

	// usersByEmailBucket maps an email to the hex ID of its user. It is the
	// unique index behind ErrDuplicateKey.
	usersByEmailBucket = "users_by_email"
)

var boltBuckets = []string{
	genresBucket,
	moviesBucket,
	customersBucket,
	rentalsBucket,
	usersBucket,
	usersByEmailBucket,
}

// Bolt is a Store backed by a BoltDB file. Each collection is a bucket of
// BSON documents keyed by the hex form of their ObjectId.
//
// Bolt allows a single writer at a time, so every multi-document change made
// inside one db.Update is atomic with respect to other requests.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens (or creates) a BoltDB database at the given path and ensures
// every bucket exists.
func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range boltBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

// Close releases the database file lock.
func (s *Bolt) Close() error {
	return s.db.Close()
}

// Ping opens a read transaction, which fails once the database is closed.
func (s *Bolt) Ping(ctx context.Context) error {
	return s.view(ctx, func(*bolt.Tx) error { return nil })
}

func (s *Bolt) view(ctx context.Context, fn func(*bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

func (s *Bolt) update(ctx context.Context, fn func(*bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(fn)
}

func key(id primitive.ObjectID) []byte {
	return []byte(id.Hex())
}

func getDoc[T any](tx *bolt.Tx, bucket string, id primitive.ObjectID) (*T, error) {
	v := tx.Bucket([]byte(bucket)).Get(key(id))
	if v == nil {
		return nil, ErrNotFound
	}
	var doc T
	if err := bson.Unmarshal(v, &doc); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", bucket, id.Hex(), err)
	}
	return &doc, nil
}

func putDoc(tx *bolt.Tx, bucket string, id primitive.ObjectID, doc any) error {
	data, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", bucket, id.Hex(), err)
	}
	return tx.Bucket([]byte(bucket)).Put(key(id), data)
}

func allDocs[T any](tx *bolt.Tx, bucket string) ([]T, error) {
	// Empty rather than nil so the JSON encoder emits [] instead of null.
	docs := []T{}
	err := tx.Bucket([]byte(bucket)).ForEach(func(k, v []byte) error {
		var doc T
		if err := bson.Unmarshal(v, &doc); err != nil {
			return fmt.Errorf("decode %s/%s: %w", bucket, k, err)
		}
		docs = append(docs, doc)
		return nil
	})
	return docs, err
}

func find[T any](ctx context.Context, s *Bolt, bucket string, id primitive.ObjectID) (*T, error) {
	var doc *T
	err := s.view(ctx, func(tx *bolt.Tx) error {
		var err error
		doc, err = getDoc[T](tx, bucket, id)
		return err
	})
	return doc, err
}

func list[T any](ctx context.Context, s *Bolt, bucket string, less func(a, b T) int) ([]T, error) {
	var docs []T
	err := s.view(ctx, func(tx *bolt.Tx) error {
		var err error
		docs, err = allDocs[T](tx, bucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(docs, less)
	return docs, nil
}

func insert(ctx context.Context, s *Bolt, bucket string, id *primitive.ObjectID, doc any) error {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	return s.update(ctx, func(tx *bolt.Tx) error {
		return putDoc(tx, bucket, *id, doc)
	})
}

// replace overwrites an existing document. Full replace, not a patch.
func replace(ctx context.Context, s *Bolt, bucket string, id primitive.ObjectID, doc any) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucket)).Get(key(id)) == nil {
			return ErrNotFound
		}
		return putDoc(tx, bucket, id, doc)
	})
}

func remove[T any](ctx context.Context, s *Bolt, bucket string, id primitive.ObjectID) (*T, error) {
	var doc *T
	err := s.update(ctx, func(tx *bolt.Tx) error {
		var err error
		if doc, err = getDoc[T](tx, bucket, id); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucket)).Delete(key(id))
	})
	return doc, err
}

// Genres.

func (s *Bolt) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return list(ctx, s, genresBucket, func(a, b models.Genre) int {
		return strings.Compare(a.Name, b.Name)
	})
}

func (s *Bolt) GetGenre(ctx context.Context, id primitive.ObjectID) (*models.Genre, error) {
	return find[models.Genre](ctx, s, genresBucket, id)
}

func (s *Bolt) CreateGenre(ctx context.Context, g *models.Genre) error {
	return insert(ctx, s, genresBucket, &g.ID, g)
}

func (s *Bolt) UpdateGenre(ctx context.Context, g *models.Genre) error {
	return replace(ctx, s, genresBucket, g.ID, g)
}

func (s *Bolt) DeleteGenre(ctx context.Context, id primitive.ObjectID) (*models.Genre, error) {
	return remove[models.Genre](ctx, s, genresBucket, id)
}

// Movies.

func (s *Bolt) ListMovies(ctx context.Context) ([]models.Movie, error) {
	return list(ctx, s, moviesBucket, func(a, b models.Movie) int {
		return strings.Compare(a.Title, b.Title)
	})
}

func (s *Bolt) GetMovie(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	return find[models.Movie](ctx, s, moviesBucket, id)
}

func (s *Bolt) CreateMovie(ctx context.Context, m *models.Movie) error {
	return insert(ctx, s, moviesBucket, &m.ID, m)
}

func (s *Bolt) UpdateMovie(ctx context.Context, m *models.Movie) error {
	return replace(ctx, s, moviesBucket, m.ID, m)
}

func (s *Bolt) DeleteMovie(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	return remove[models.Movie](ctx, s, moviesBucket, id)
}

// Customers.

func (s *Bolt) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return list(ctx, s, customersBucket, func(a, b models.Customer) int {
		return strings.Compare(a.Name, b.Name)
	})
}

func (s *Bolt) GetCustomer(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	return find[models.Customer](ctx, s, customersBucket, id)
}

func (s *Bolt) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return insert(ctx, s, customersBucket, &c.ID, c)
}

func (s *Bolt) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	return replace(ctx, s, customersBucket, c.ID, c)
}

func (s *Bolt) DeleteCustomer(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	return remove[models.Customer](ctx, s, customersBucket, id)
}

// Rentals.

func (s *Bolt) ListRentals(ctx context.Context) ([]models.Rental, error) {
	return list(ctx, s, rentalsBucket, func(a, b models.Rental) int {
		return b.DateOut.Compare(a.DateOut)
	})
}

func (s *Bolt) GetRental(ctx context.Context, id primitive.ObjectID) (*models.Rental, error) {
	return find[models.Rental](ctx, s, rentalsBucket, id)
}

// CreateRental checks the stock, decrements it and stores the rental inside
// one write transaction.
func (s *Bolt) CreateRental(ctx context.Context, r *models.Rental) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		movie, err := getDoc[models.Movie](tx, moviesBucket, r.Movie.ID)
		if err != nil {
			return err
		}
		if movie.NumberInStock <= 0 {
			return ErrOutOfStock
		}

		movie.NumberInStock--
		if err := putDoc(tx, moviesBucket, movie.ID, movie); err != nil {
			return err
		}

		if r.ID.IsZero() {
			r.ID = primitive.NewObjectID()
		}
		return putDoc(tx, rentalsBucket, r.ID, r)
	})
}

// ReturnRental scans the whole rentals bucket for the open rental. Bolt is
// the single-node backend for local runs and tests, where the bucket holds at
// most a few thousand rentals; deployments with real volume run on Mongo,
// which looks the rental up through the customer/movie index.
func (s *Bolt) ReturnRental(ctx context.Context, customerID, movieID primitive.ObjectID, now time.Time) (*models.Rental, error) {
	var result *models.Rental

	err := s.update(ctx, func(tx *bolt.Tx) error {
		rentals, err := allDocs[models.Rental](tx, rentalsBucket)
		if err != nil {
			return err
		}

		matched := false
		for i := range rentals {
			r := &rentals[i]
			if r.Customer.ID != customerID || r.Movie.ID != movieID {
				continue
			}
			matched = true
			if !r.Returned() {
				result = r
				break
			}
		}
		switch {
		case result != nil:
		case matched:
			return ErrAlreadyReturned
		default:
			return ErrNotFound
		}

		result.Return(now)
		if err := putDoc(tx, rentalsBucket, result.ID, result); err != nil {
			return err
		}

		// The movie may have been deleted since; the rental is still closed.
		movie, err := getDoc[models.Movie](tx, moviesBucket, movieID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		movie.NumberInStock++
		return putDoc(tx, moviesBucket, movie.ID, movie)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Users.

func (s *Bolt) CreateUser(ctx context.Context, u *models.User) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		idx := tx.Bucket([]byte(usersByEmailBucket))
		if idx.Get([]byte(u.Email)) != nil {
			return ErrDuplicateKey
		}

		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		if err := putDoc(tx, usersBucket, u.ID, u); err != nil {
			return err
		}
		return idx.Put([]byte(u.Email), key(u.ID))
	})
}

func (s *Bolt) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return find[models.User](ctx, s, usersBucket, id)
}

func (s *Bolt) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := s.view(ctx, func(tx *bolt.Tx) error {
		hexID := tx.Bucket([]byte(usersByEmailBucket)).Get([]byte(email))
		if hexID == nil {
			return ErrNotFound
		}
		id, err := primitive.ObjectIDFromHex(string(hexID))
		if err != nil {
			return fmt.Errorf("users_by_email/%s: %w", email, err)
		}
		user, err = getDoc[models.User](tx, usersBucket, id)
		return err
	})
	return user, err
}

var _ Store = (*Bolt)(nil)
