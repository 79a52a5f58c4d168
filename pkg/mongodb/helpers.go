package mongodb

import "go.mongodb.org/mongo-driver/bson"

// SortAsc builds an ascending sort over the given fields, in order
func SortAsc(fields ...string) bson.D {
	sort := bson.D{}
	for _, f := range fields {
		sort = append(sort, bson.E{Key: f, Value: 1})
	}
	return sort
}

// SortDesc builds a descending sort over the given fields, in order
func SortDesc(fields ...string) bson.D {
	sort := bson.D{}
	for _, f := range fields {
		sort = append(sort, bson.E{Key: f, Value: -1})
	}
	return sort
}
