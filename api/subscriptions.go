package api

import (
	"errors"
	"net/http"

	"github.com/adoptoposs/adoptoposs/internal/algorithms"
	"github.com/adoptoposs/adoptoposs/internal/httpx"
	"github.com/adoptoposs/adoptoposs/internal/to"
	"github.com/adoptoposs/adoptoposs/internal/validation"
	"github.com/adoptoposs/adoptoposs/models"
)

func SubscriptionsIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.findUser(r)
	if err != nil {
		return err
	}
	subscriptions, err := models.NewTagSubscriptions(env.DB).ListByUser(user)
	if err != nil {
		return err
	}
	return to.JSON(w, algorithms.Map(subscriptions, serialiseSubscription))
}

// SubscriptionsCreate subscribes the user to every tag in tag_ids. Either
// all of the subscriptions are created or none are.
func SubscriptionsCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.findUser(r)
	if err != nil {
		return err
	}
	var params struct {
		TagIDs []uint32 `json:"tag_ids" schema:"tag_ids"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	ids := algorithms.Uniq(params.TagIDs)
	if len(ids) == 0 {
		return validation.Errorf("tag_ids", "can't be blank")
	}
	var tags []models.Tag
	if err := env.DB.Where("id IN ?", ids).Order("name").Find(&tags).Error; err != nil {
		return err
	}
	if len(tags) != len(ids) {
		return validation.Errorf("tag_ids", "contains an unknown tag")
	}
	subscriptions, err := models.NewTagSubscriptions(env.DB).CreateAll(user, tags)
	if err != nil {
		return err
	}
	return to.JSONStatus(w, http.StatusCreated, algorithms.Map(subscriptions, serialiseSubscription))
}

func SubscriptionsDestroy(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.findUser(r)
	if err != nil {
		return err
	}
	id, err := uintParam(r, "id")
	if err != nil {
		return err
	}
	subscriptions := models.NewTagSubscriptions(env.DB)
	subscription, err := subscriptions.FindByID(id)
	if err != nil {
		return notFound(err)
	}
	if subscription.UserID != user.ID {
		return httpx.Error(http.StatusNotFound, errors.New("subscription not found"))
	}
	if err := subscriptions.Delete(subscription); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// RecommendedTagsIndex returns the language tags of the user's repositories
// at their provider.
func RecommendedTagsIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.findUser(r)
	if err != nil {
		return err
	}
	tags, err := models.NewTags(env.DB).ListRecommended(r.Context(), user, user.ProviderToken, env.Providers)
	observeRecommendation(err)
	if err != nil {
		return err
	}
	return to.JSON(w, algorithms.Map(tags, serialiseTag))
}

func DigestsIndex(env *Env, w http.ResponseWriter, r *http.Request) error {
	user, err := env.findUser(r)
	if err != nil {
		return err
	}
	digests, err := models.NewDigests(env.DB).ListByUser(user)
	if err != nil {
		return err
	}
	return to.JSON(w, algorithms.Map(digests, serialiseDigest))
}
