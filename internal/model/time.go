package model

// TimestampLayout matches JavaScript's Date.toISOString in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
