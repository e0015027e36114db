package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/arkantrust/vidly/models"
)

// DefaultDatabase is used when the connection string names no database.
const DefaultDatabase = "vidly"

// Mongo is a Store backed by a MongoDB database, one collection per entity.
type Mongo struct {
	db        *mongo.Database
	genres    *mongo.Collection
	movies    *mongo.Collection
	customers *mongo.Collection
	rentals   *mongo.Collection
	users     *mongo.Collection
}

// NewMongo connects to uri, verifies the connection and makes sure the
// indexes the store relies on exist.
func NewMongo(ctx context.Context, uri string) (*Mongo, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongodb uri: %w", err)
	}
	name := cs.Database
	if name == "" {
		name = DefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := newMongo(client.Database(name))
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func newMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		db:        db,
		genres:    db.Collection("genres"),
		movies:    db.Collection("movies"),
		customers: db.Collection("customers"),
		rentals:   db.Collection("rentals"),
		users:     db.Collection("users"),
	}
}

func (s *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users.email index: %w", err)
	}

	_, err = s.rentals.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "customer._id", Value: 1}, {Key: "movie._id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create rentals lookup index: %w", err)
	}
	return nil
}

// Ping checks the primary is reachable.
func (s *Mongo) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the client, waiting at most five seconds for in-flight
// operations.
func (s *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.Client().Disconnect(ctx)
}

// mapErr translates driver errors into the package sentinels.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

func byID(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, sort bson.D) ([]T, error) {
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read %s: %w", coll.Name(), err)
	}
	return docs, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return &doc, nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, id *primitive.ObjectID, doc any) error {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	_, err := coll.InsertOne(ctx, doc)
	return mapErr(err)
}

func replaceOne(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, doc any) error {
	res, err := coll.ReplaceOne(ctx, byID(id), doc)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteOne[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (*T, error) {
	var doc T
	if err := coll.FindOneAndDelete(ctx, byID(id)).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return &doc, nil
}

// Genres.

func (s *Mongo) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return findAll[models.Genre](ctx, s.genres, bson.D{{Key: "name", Value: 1}})
}

func (s *Mongo) GetGenre(ctx context.Context, id primitive.ObjectID) (*models.Genre, error) {
	return findOne[models.Genre](ctx, s.genres, byID(id))
}

func (s *Mongo) CreateGenre(ctx context.Context, g *models.Genre) error {
	return insertOne(ctx, s.genres, &g.ID, g)
}

func (s *Mongo) UpdateGenre(ctx context.Context, g *models.Genre) error {
	return replaceOne(ctx, s.genres, g.ID, g)
}

func (s *Mongo) DeleteGenre(ctx context.Context, id primitive.ObjectID) (*models.Genre, error) {
	return deleteOne[models.Genre](ctx, s.genres, id)
}

// Movies.

func (s *Mongo) ListMovies(ctx context.Context) ([]models.Movie, error) {
	return findAll[models.Movie](ctx, s.movies, bson.D{{Key: "title", Value: 1}})
}

func (s *Mongo) GetMovie(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	return findOne[models.Movie](ctx, s.movies, byID(id))
}

func (s *Mongo) CreateMovie(ctx context.Context, m *models.Movie) error {
	return insertOne(ctx, s.movies, &m.ID, m)
}

func (s *Mongo) UpdateMovie(ctx context.Context, m *models.Movie) error {
	return replaceOne(ctx, s.movies, m.ID, m)
}

func (s *Mongo) DeleteMovie(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	return deleteOne[models.Movie](ctx, s.movies, id)
}

// Customers.

func (s *Mongo) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return findAll[models.Customer](ctx, s.customers, bson.D{{Key: "name", Value: 1}})
}

func (s *Mongo) GetCustomer(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	return findOne[models.Customer](ctx, s.customers, byID(id))
}

func (s *Mongo) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return insertOne(ctx, s.customers, &c.ID, c)
}

func (s *Mongo) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	return replaceOne(ctx, s.customers, c.ID, c)
}

func (s *Mongo) DeleteCustomer(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	return deleteOne[models.Customer](ctx, s.customers, id)
}

// Rentals.

func (s *Mongo) ListRentals(ctx context.Context) ([]models.Rental, error) {
	return findAll[models.Rental](ctx, s.rentals, bson.D{{Key: "dateOut", Value: -1}})
}

func (s *Mongo) GetRental(ctx context.Context, id primitive.ObjectID) (*models.Rental, error) {
	return findOne[models.Rental](ctx, s.rentals, byID(id))
}

// CreateRental takes the copy with a single decrement-if-positive update, so
// two requests racing for the last copy cannot both win. If recording the
// rental then fails the copy is put back.
func (s *Mongo) CreateRental(ctx context.Context, r *models.Rental) error {
	movieID := r.Movie.ID
	filter := bson.M{"_id": movieID, "numberInStock": bson.M{"$gt": 0}}
	take := bson.M{"$inc": bson.M{"numberInStock": -1}}

	if err := s.movies.FindOneAndUpdate(ctx, filter, take).Err(); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("take copy of movie %s: %w", movieID.Hex(), err)
		}
		n, err := s.movies.CountDocuments(ctx, byID(movieID))
		if err != nil {
			return fmt.Errorf("count movie %s: %w", movieID.Hex(), err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrOutOfStock
	}

	if err := insertOne(ctx, s.rentals, &r.ID, r); err != nil {
		restore := bson.M{"$inc": bson.M{"numberInStock": 1}}
		if _, rerr := s.movies.UpdateByID(context.WithoutCancel(ctx), movieID, restore); rerr != nil {
			return errors.Join(fmt.Errorf("insert rental: %w", err), fmt.Errorf("restore stock: %w", rerr))
		}
		return fmt.Errorf("insert rental: %w", err)
	}
	return nil
}

// ReturnRental closes the rental first, guarded on it still being open, and
// then restocks the movie. A failed restock reopens the rental.
func (s *Mongo) ReturnRental(ctx context.Context, customerID, movieID primitive.ObjectID, now time.Time) (*models.Rental, error) {
	match := bson.M{"customer._id": customerID, "movie._id": movieID}
	open := bson.M{"customer._id": customerID, "movie._id": movieID, "dateReturned": nil}

	r, err := findOne[models.Rental](ctx, s.rentals, open)
	if errors.Is(err, ErrNotFound) {
		n, err := s.rentals.CountDocuments(ctx, match)
		if err != nil {
			return nil, fmt.Errorf("count rentals: %w", err)
		}
		if n == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrAlreadyReturned
	}
	if err != nil {
		return nil, err
	}

	r.Return(now)

	// Only close it if nobody else did in the meantime.
	res, err := s.rentals.UpdateOne(ctx,
		bson.M{"_id": r.ID, "dateReturned": nil},
		bson.M{"$set": bson.M{"dateReturned": r.DateReturned, "rentalFee": r.RentalFee}},
	)
	if err != nil {
		return nil, fmt.Errorf("close rental %s: %w", r.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrAlreadyReturned
	}

	if _, err := s.movies.UpdateByID(ctx, movieID, bson.M{"$inc": bson.M{"numberInStock": 1}}); err != nil {
		// Reopen the rental so the return can be retried.
		reopen := bson.M{"$set": bson.M{"dateReturned": nil, "rentalFee": nil}}
		if _, rerr := s.rentals.UpdateOne(context.WithoutCancel(ctx), bson.M{"_id": r.ID, "dateReturned": r.DateReturned}, reopen); rerr != nil {
			return nil, errors.Join(fmt.Errorf("restock movie %s: %w", movieID.Hex(), err), fmt.Errorf("reopen rental: %w", rerr))
		}
		return nil, fmt.Errorf("restock movie %s: %w", movieID.Hex(), err)
	}
	return r, nil
}

// Users.

func (s *Mongo) CreateUser(ctx context.Context, u *models.User) error {
	return insertOne(ctx, s.users, &u.ID, u)
}

func (s *Mongo) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, s.users, byID(id))
}

func (s *Mongo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"email": email})
}

var _ Store = (*Mongo)(nil)
