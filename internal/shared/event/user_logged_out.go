package event

const (
	UserLoggedOutDestination              string = "identity_user_logged_out"
	UserLoggedOutDestinationConsumerVault string = "identity_user_logged_out_consumer_vault"
)

type UserLoggedOutMessage struct {
	UserID int64 `json:"user_id"`
}
