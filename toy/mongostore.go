package toy

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const toyCollection = "toy"

type toyDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Price     float64            `bson:"price"`
	Labels    []string           `bson:"labels"`
	CreatedAt int64              `bson:"createdAt"`
}

func (d toyDoc) toy() Toy {
	labels := d.Labels
	if labels == nil {
		labels = []string{}
	}
	return Toy{ID: d.ID.Hex(), Name: d.Name, Price: Price(d.Price), Labels: labels, CreatedAt: d.CreatedAt}
}

// MongoStore keeps toys in a MongoDB collection. Toy ids are ObjectID hex strings.
type MongoStore struct {
	client   *mongo.Client
	coll     *mongo.Collection
	pageSize int
	now      func() time.Time
}

// NewMongoStore connects to uri and uses the "toy" collection of database.
func NewMongoStore(ctx context.Context, uri, database string, pageSize int) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo store needs a URI (store.mongoUri or MONGO_URL)")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}
	return &MongoStore{
		client:   client,
		coll:     client.Database(database).Collection(toyCollection),
		pageSize: pageSize,
		now:      time.Now,
	}, nil
}

// buildMongoQuery translates a toy query into a filter document and find options.
func buildMongoQuery(f FilterBy, s SortBy, pageIdx string, pageSize int) (bson.M, *options.FindOptions, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	idx, paged, err := ParsePageIdx(pageIdx)
	if err != nil {
		return nil, nil, err
	}
	if _, err := f.matcher(); err != nil {
		return nil, nil, err
	}

	criteria := bson.M{}
	if f.Txt != "" {
		criteria["name"] = bson.M{"$regex": f.Txt, "$options": "i"}
	}
	price := bson.M{}
	if f.MinPrice > 0 {
		price["$gte"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		price["$lte"] = f.MaxPrice
	}
	if len(price) > 0 {
		criteria["price"] = price
	}
	if len(f.Labels) > 0 {
		criteria["labels"] = bson.M{"$all": f.Labels}
	}

	sort := bson.D{}
	if s.Type != "" {
		dir := 1
		if s.Descending() {
			dir = -1
		}
		sort = append(sort, bson.E{Key: s.Type, Value: dir})
	}
	sort = append(sort, bson.E{Key: "createdAt", Value: 1}, bson.E{Key: "_id", Value: 1})

	opts := options.Find().SetSort(sort)
	if s.Type == SortByName {
		// case-insensitive, like lower(name) in Postgres
		opts.SetCollation(&options.Collation{Locale: "en", Strength: 2})
	}
	if paged {
		opts.SetSkip(int64(pageOffset(idx, pageSize))).SetLimit(int64(pageSize))
	}
	return criteria, opts, nil
}

func (s *MongoStore) Query(ctx context.Context, filterBy FilterBy, sortBy SortBy, pageIdx string) ([]Toy, error) {
	criteria, opts, err := buildMongoQuery(filterBy, sortBy, pageIdx, s.pageSize)
	if err != nil {
		return nil, err
	}
	cur, err := s.coll.Find(ctx, criteria, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find toys")
	}
	var docs []toyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode toys")
	}
	toys := make([]Toy, 0, len(docs))
	for _, d := range docs {
		toys = append(toys, d.toy())
	}
	return toys, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Toy, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Toy{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	var d toyDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Toy{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	if err != nil {
		return Toy{}, errors.Wrapf(err, "get toy %s", id)
	}
	return d.toy(), nil
}

func (s *MongoStore) Save(ctx context.Context, t Toy) (Toy, error) {
	labels := t.Labels
	if labels == nil {
		labels = []string{}
	}

	if t.ID == "" {
		d := toyDoc{
			ID:        primitive.NewObjectID(),
			Name:      t.Name,
			Price:     float64(t.Price),
			Labels:    labels,
			CreatedAt: s.now().UnixMilli(),
		}
		if _, err := s.coll.InsertOne(ctx, d); err != nil {
			return Toy{}, errors.Wrap(err, "insert toy")
		}
		return d.toy(), nil
	}

	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return Toy{}, errors.Wrapf(ErrNotFound, "id %s", t.ID)
	}
	update := bson.M{"$set": bson.M{"name": t.Name, "price": float64(t.Price), "labels": labels}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d toyDoc
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Toy{}, errors.Wrapf(ErrNotFound, "id %s", t.ID)
	}
	if err != nil {
		return Toy{}, errors.Wrapf(err, "update toy %s", t.ID)
	}
	return d.toy(), nil
}

func (s *MongoStore) Remove(ctx context.Context, id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", errors.Wrapf(ErrNotFound, "id %s", id)
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return "", errors.Wrapf(err, "delete toy %s", id)
	}
	if res.DeletedCount == 0 {
		return "", errors.Wrapf(ErrNotFound, "id %s", id)
	}
	return RemovedMsg, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
