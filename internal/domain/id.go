package domain

import "go.mongodb.org/mongo-driver/v2/bson"

// ParseID validates a caller-supplied identifier before it reaches any query.
// Malformed input short-circuits the request with an invalid-argument error, so
// no handler ever passes raw path or body strings into a pipeline.
func ParseID(raw string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return bson.NilObjectID, InvalidArgument("invalid id: " + raw)
	}
	return id, nil
}
