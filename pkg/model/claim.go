package model

import "fmt"

// ClaimRequest asks for one seat on behalf of one user. It is immutable once published.
type ClaimRequest struct {
	UserID  int64  `json:"userId" validate:"required,gt=0"`
	EventID int64  `json:"eventId" validate:"required,gt=0"`
	SeatID  string `json:"seatId" validate:"required,max=50"`
}

// PartitionKey keeps every claim for the same seat on one partition, in publish order.
func (c *ClaimRequest) PartitionKey() string {
	return fmt.Sprintf("%d:%s", c.EventID, c.SeatID)
}
