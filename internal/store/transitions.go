package store

import "github.com/superchezzz/daa-ayospila/internal/models"

// A customer only ever moves waiting -> serving -> served. No reverse moves,
// no skipping serving.
var transitionMap = map[string]string{
	models.StatusWaiting: models.StatusServing,
	models.StatusServing: models.StatusServed,
}

func ValidTransition(from, to string) bool {
	return transitionMap[from] == to
}
