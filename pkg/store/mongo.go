package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kintreehq/kintree/pkg/errors"
	"github.com/kintreehq/kintree/pkg/family"
)

// Collection names within the kintree database.
const (
	collPersons = "persons"
	collCouples = "couples"
	collEdges   = "edges"
	collPhotos  = "photos"
	collTags    = "photo_tags"
)

// Mongo is a MongoDB-backed implementation of [family.Store].
//
// The client handle is constructed once by [ConnectMongo] and injected where
// needed - there is no hidden package-level connection. Each method is a
// single driver call and therefore a single atomic unit; composite domain
// flows issue multiple calls and accept the documented partial-state
// behavior.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

type edgeDoc struct {
	PersonID string          `bson:"person_id"`
	CoupleID string          `bson:"couple_id"`
	Kind     family.EdgeKind `bson:"kind"`
}

type tagDoc struct {
	PhotoID  string `bson:"photo_id"`
	PersonID string `bson:"person_id"`
}

// ConnectMongo connects to MongoDB and returns a store bound to the given
// database. The connection is verified with a ping before returning.
func ConnectMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}
	return &Mongo{client: client, db: client.Database(database)}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) GetAll(ctx context.Context) (*family.Graph, error) {
	g := &family.Graph{
		Persons:      []family.Person{},
		Couples:      []family.Couple{},
		Partnerships: []family.Edge{},
		Parentages:   []family.Edge{},
	}

	cur, err := m.db.Collection(collPersons).Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list persons")
	}
	if err := cur.All(ctx, &g.Persons); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode persons")
	}

	cur, err = m.db.Collection(collCouples).Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list couples")
	}
	if err := cur.All(ctx, &g.Couples); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode couples")
	}

	cur, err = m.db.Collection(collEdges).Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list edges")
	}
	var docs []edgeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode edges")
	}
	for _, d := range docs {
		e := family.Edge{PersonID: d.PersonID, CoupleID: d.CoupleID, Kind: d.Kind}
		if d.Kind == family.Partnership {
			g.Partnerships = append(g.Partnerships, e)
		} else {
			g.Parentages = append(g.Parentages, e)
		}
	}
	return g, nil
}

func (m *Mongo) CreatePerson(ctx context.Context, p family.Person) (family.Person, error) {
	if p.ID == "" {
		return family.Person{}, errors.New(errors.ErrCodeValidation, "person id is required")
	}
	if _, err := m.db.Collection(collPersons).InsertOne(ctx, p); err != nil {
		return family.Person{}, errors.Wrap(errors.ErrCodeInternal, err, "insert person")
	}
	return p, nil
}

func (m *Mongo) GetPerson(ctx context.Context, id string) (family.Person, error) {
	var p family.Person
	err := m.db.Collection(collPersons).FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return family.Person{}, errors.New(errors.ErrCodeNotFound, "person %s not found", id)
	}
	if err != nil {
		return family.Person{}, errors.Wrap(errors.ErrCodeInternal, err, "find person")
	}
	return p, nil
}

func (m *Mongo) UpdatePerson(ctx context.Context, id string, upd family.PersonUpdate) (family.Person, error) {
	p, err := m.GetPerson(ctx, id)
	if err != nil {
		return family.Person{}, err
	}
	upd.Apply(&p)
	if _, err := m.db.Collection(collPersons).ReplaceOne(ctx, bson.M{"_id": id}, p); err != nil {
		return family.Person{}, errors.Wrap(errors.ErrCodeInternal, err, "update person")
	}
	return p, nil
}

func (m *Mongo) DeletePerson(ctx context.Context, id string) error {
	res, err := m.db.Collection(collPersons).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete person")
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "person %s not found", id)
	}
	return nil
}

func (m *Mongo) CreateCouple(ctx context.Context, c family.Couple) (family.Couple, error) {
	if c.ID == "" {
		return family.Couple{}, errors.New(errors.ErrCodeValidation, "couple id is required")
	}
	if _, err := m.db.Collection(collCouples).InsertOne(ctx, c); err != nil {
		return family.Couple{}, errors.Wrap(errors.ErrCodeInternal, err, "insert couple")
	}
	return c, nil
}

func (m *Mongo) GetCouple(ctx context.Context, id string) (family.Couple, error) {
	var c family.Couple
	err := m.db.Collection(collCouples).FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return family.Couple{}, errors.New(errors.ErrCodeNotFound, "couple %s not found", id)
	}
	if err != nil {
		return family.Couple{}, errors.Wrap(errors.ErrCodeInternal, err, "find couple")
	}
	return c, nil
}

func (m *Mongo) DeleteCouple(ctx context.Context, id string) error {
	res, err := m.db.Collection(collCouples).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete couple")
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "couple %s not found", id)
	}
	if _, err := m.db.Collection(collEdges).DeleteMany(ctx, bson.M{"couple_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete couple edges")
	}
	return nil
}

func (m *Mongo) CreateEdge(ctx context.Context, personID, coupleID string, kind family.EdgeKind) error {
	if _, err := m.GetPerson(ctx, personID); err != nil {
		return err
	}
	if _, err := m.GetCouple(ctx, coupleID); err != nil {
		return err
	}
	doc := edgeDoc{PersonID: personID, CoupleID: coupleID, Kind: kind}
	if _, err := m.db.Collection(collEdges).InsertOne(ctx, doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "insert edge")
	}
	return nil
}

func (m *Mongo) DeleteEdge(ctx context.Context, personID, coupleID string, kind family.EdgeKind) error {
	filter := bson.M{"person_id": personID, "couple_id": coupleID, "kind": kind}
	res, err := m.db.Collection(collEdges).DeleteMany(ctx, filter)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete edge")
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "no %s edge between person %s and couple %s", kind, personID, coupleID)
	}
	return nil
}

func (m *Mongo) FindEdgesForPerson(ctx context.Context, personID string) (family.Membership, error) {
	cur, err := m.db.Collection(collEdges).Find(ctx, bson.M{"person_id": personID})
	if err != nil {
		return family.Membership{}, errors.Wrap(errors.ErrCodeInternal, err, "find edges")
	}
	var docs []edgeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return family.Membership{}, errors.Wrap(errors.ErrCodeInternal, err, "decode edges")
	}

	ms := family.Membership{AsPartner: []string{}, AsChild: []string{}}
	for _, d := range docs {
		if d.Kind == family.Partnership {
			ms.AsPartner = append(ms.AsPartner, d.CoupleID)
		} else {
			ms.AsChild = append(ms.AsChild, d.CoupleID)
		}
	}
	return ms, nil
}

func (m *Mongo) CreatePhoto(ctx context.Context, ph family.Photo) (family.Photo, error) {
	if ph.ID == "" || ph.URL == "" {
		return family.Photo{}, errors.New(errors.ErrCodeValidation, "photo id and url are required")
	}
	if _, err := m.db.Collection(collPhotos).InsertOne(ctx, ph); err != nil {
		return family.Photo{}, errors.Wrap(errors.ErrCodeInternal, err, "insert photo")
	}
	return ph, nil
}

func (m *Mongo) ListPhotos(ctx context.Context) ([]family.Photo, error) {
	cur, err := m.db.Collection(collPhotos).Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list photos")
	}
	var photos []family.Photo
	if err := cur.All(ctx, &photos); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode photos")
	}

	for i := range photos {
		tcur, err := m.db.Collection(collTags).Find(ctx, bson.M{"photo_id": photos[i].ID})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "list photo tags")
		}
		var tags []tagDoc
		if err := tcur.All(ctx, &tags); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode photo tags")
		}
		photos[i].Persons = nil
		for _, t := range tags {
			photos[i].Persons = append(photos[i].Persons, t.PersonID)
		}
	}
	return photos, nil
}

func (m *Mongo) DeletePhoto(ctx context.Context, id string) error {
	res, err := m.db.Collection(collPhotos).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete photo")
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "photo %s not found", id)
	}
	if _, err := m.db.Collection(collTags).DeleteMany(ctx, bson.M{"photo_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete photo tags")
	}
	return nil
}

// CreateTags records all appears-in edges for a photo in one batch insert.
// Like the in-memory store, it rejects the whole batch with NOT_FOUND when
// the photo or any tagged person does not exist; tags never dangle.
func (m *Mongo) CreateTags(ctx context.Context, photoID string, personIDs []string) error {
	if len(personIDs) == 0 {
		return nil
	}

	n, err := m.db.Collection(collPhotos).CountDocuments(ctx, bson.M{"_id": photoID})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "find photo")
	}
	if n == 0 {
		return errors.New(errors.ErrCodeNotFound, "photo %s not found", photoID)
	}

	if missing, err := m.missingPersons(ctx, personIDs); err != nil {
		return err
	} else if missing != "" {
		return errors.New(errors.ErrCodeNotFound, "person %s not found", missing)
	}

	docs := make([]interface{}, len(personIDs))
	for i, personID := range personIDs {
		docs[i] = tagDoc{PhotoID: photoID, PersonID: personID}
	}
	if _, err := m.db.Collection(collTags).InsertMany(ctx, docs); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "insert photo tags")
	}
	return nil
}

// missingPersons returns the first id from personIDs with no persons
// document, or "" when all exist.
func (m *Mongo) missingPersons(ctx context.Context, personIDs []string) (string, error) {
	cur, err := m.db.Collection(collPersons).Find(ctx,
		bson.M{"_id": bson.M{"$in": personIDs}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "find persons")
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "decode persons")
	}
	found := make([]string, len(docs))
	for i, d := range docs {
		found[i] = d.ID
	}
	return firstMissing(personIDs, found), nil
}

// firstMissing returns the first requested id absent from found, preserving
// request order, or "" when every id is present.
func firstMissing(requested, found []string) string {
	exists := make(map[string]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}
	for _, id := range requested {
		if !exists[id] {
			return id
		}
	}
	return ""
}

func (m *Mongo) DeleteTagsForPerson(ctx context.Context, personID string) error {
	if _, err := m.db.Collection(collTags).DeleteMany(ctx, bson.M{"person_id": personID}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete person tags")
	}
	return nil
}

func (m *Mongo) CountTagsForPerson(ctx context.Context, personID string) (int, error) {
	n, err := m.db.Collection(collTags).CountDocuments(ctx, bson.M{"person_id": personID})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "count person tags")
	}
	return int(n), nil
}

// Ensure Mongo implements family.Store.
var _ family.Store = (*Mongo)(nil)
