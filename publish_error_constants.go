package main

const configurationError = 100

const fileAccessError = 200

const invalidTokenOrAccessDenied = 401
const releaseNotFound = 404

const uploadFailed = 500
const errorWhileComputingChecksum = 520
