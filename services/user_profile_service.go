package services

import (
	"context"
	"errors"
	"fmt"

	"kindred_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UserProfileService is the keyed lookup for profiles and stated match
// preferences. Consumers see simple maps; the BatchGetItem size limit is
// handled underneath by DynamoService.
type UserProfileService struct {
	Dynamo *DynamoService
}

// GetProfile fetches one profile; (nil, nil) when the user has none.
func (ps *UserProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	item, err := ps.Dynamo.GetItem(ctx, models.UserProfilesTable, StringKey("userId", userID))
	if errors.Is(err, ErrItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile for %s: %w", userID, err)
	}
	return &profile, nil
}

// GetPreference fetches one preference filter; (nil, nil) when absent.
func (ps *UserProfileService) GetPreference(ctx context.Context, userID string) (*models.MatchPreference, error) {
	item, err := ps.Dynamo.GetItem(ctx, models.MatchPreferencesTable, StringKey("userId", userID))
	if errors.Is(err, ErrItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var pref models.MatchPreference
	if err := attributevalue.UnmarshalMap(item, &pref); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preference for %s: %w", userID, err)
	}
	return &pref, nil
}

// GetProfiles batch-fetches profiles for a set of users. Users without a
// profile are simply absent from the returned map.
func (ps *UserProfileService) GetProfiles(ctx context.Context, userIDs []string) (map[string]models.UserProfile, error) {
	items, err := ps.Dynamo.BatchGetItems(ctx, models.UserProfilesTable, userIDKeys(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch profiles: %w", err)
	}

	profiles := make(map[string]models.UserProfile, len(items))
	for _, item := range items {
		var profile models.UserProfile
		if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
		}
		profiles[profile.UserID] = profile
	}
	return profiles, nil
}

// GetPreferences batch-fetches preferences for a set of users; users without
// one are absent from the map.
func (ps *UserProfileService) GetPreferences(ctx context.Context, userIDs []string) (map[string]models.MatchPreference, error) {
	items, err := ps.Dynamo.BatchGetItems(ctx, models.MatchPreferencesTable, userIDKeys(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch preferences: %w", err)
	}

	prefs := make(map[string]models.MatchPreference, len(items))
	for _, item := range items {
		var pref models.MatchPreference
		if err := attributevalue.UnmarshalMap(item, &pref); err != nil {
			return nil, fmt.Errorf("failed to unmarshal preference: %w", err)
		}
		prefs[pref.UserID] = pref
	}
	return prefs, nil
}

func userIDKeys(userIDs []string) []map[string]types.AttributeValue {
	keys := make([]map[string]types.AttributeValue, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, StringKey("userId", id))
	}
	return keys
}
