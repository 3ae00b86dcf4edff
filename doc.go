// Package main runs MomPick Admin, the back office of the MomPick parenting
// app. It serves a JSON API and a few server rendered pages for moderating
// users, posts, reviews and reports, for maintaining banners, notices, terms
// and kindergarten details, and for sending push notifications now or at a
// scheduled time. Data lives in postgres, mysql or sqlite through gorm,
// images in S3 compatible object storage.
package main
