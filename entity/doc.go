// Package entity holds the Department and Seller data types.
package entity
